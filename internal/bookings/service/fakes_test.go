package service

import (
	"context"
	"fmt"
	bookingserrors "locmaroc/internal/bookings/errors"
	"locmaroc/internal/bookings/events"
	mongotx "locmaroc/pkg/db/mongo"
	apperrors "locmaroc/pkg/errors"
	"locmaroc/pkg/model"
	"slices"
	"sync"
	"time"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	seq      int

	// afterCheck runs after FindOverlapping read the store, outside the lock.
	afterCheck func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*model.Booking{}}
}

func (r *fakeBookingRepo) put(b *model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		r.seq++
		b.ID = fmt.Sprintf("%024x", r.seq)
	}
	cp := *b
	r.bookings[b.ID] = &cp
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *fakeBookingRepo) Create(_ context.Context, b *model.Booking) error {
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	r.put(b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if len(id) != 24 {
		return nil, bookingserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) FindDetailedByID(ctx context.Context, id string) (*model.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookingRepo) FindByParty(_ context.Context, userID string) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.IsParty(userID) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, itemID string, start, end time.Time) (*model.Booking, error) {
	r.mu.Lock()
	var found *model.Booking
	for _, b := range r.bookings {
		if b.ItemID == itemID && b.Status.Blocking() && model.Overlaps(b.Dates.StartDate, b.Dates.EndDate, start, end) {
			cp := *b
			found = &cp
			break
		}
	}
	r.mu.Unlock()

	if r.afterCheck != nil {
		r.afterCheck()
	}
	return found, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, from []model.BookingStatus, to model.BookingStatus, reason string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if !slices.Contains(from, b.Status) {
		return nil, bookingserrors.ErrStatusChanged
	}
	b.Status = to
	if reason != "" {
		b.CancellationReason = reason
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) AppendMessage(_ context.Context, id string, msg model.BookingMessage) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	b.Messages = append(b.Messages, msg)
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type memLockRepo struct {
	mu    sync.Mutex
	locks map[string]model.BookingLock
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{locks: map[string]model.BookingLock{}}
}

func (r *memLockRepo) Create(_ context.Context, lock *model.BookingLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if held, ok := r.locks[lock.ID]; ok && held.ExpiresAt.After(time.Now()) {
		return bookingserrors.ErrLockHeld
	}
	r.locks[lock.ID] = *lock
	return nil
}

func (r *memLockRepo) Release(ctx context.Context, lock *model.BookingLock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if held, ok := r.locks[lock.ID]; ok && held.Token == lock.Token {
		delete(r.locks, lock.ID)
	}
	return nil
}

func (r *memLockRepo) Backend() string { return "memory" }

func (r *memLockRepo) held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

type fakeCatalog struct {
	items map[string]*model.Item
}

func (c *fakeCatalog) Lookup(_ context.Context, itemID string) (*model.Item, error) {
	item, ok := c.items[itemID]
	if !ok {
		return nil, apperrors.NotFoundWithID("Item", itemID)
	}
	cp := *item
	return &cp, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
