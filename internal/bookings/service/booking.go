package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "locmaroc/internal/bookings/errors"
	"locmaroc/internal/bookings/events"
	"locmaroc/internal/bookings/repository"
	"locmaroc/internal/bookings/validator"
	"locmaroc/pkg/auth"
	"locmaroc/pkg/config"
	apperrors "locmaroc/pkg/errors"
	"locmaroc/pkg/metrics"
	"locmaroc/pkg/model"
	"locmaroc/pkg/sanitizer"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const lockRetryInterval = 50 * time.Millisecond

// ItemCatalog resolves the item a booking is made against. Lookup returns
// AppErrors.
type ItemCatalog interface {
	Lookup(ctx context.Context, itemID string) (*model.Item, error)
}

type BookingService interface {
	Create(ctx context.Context, session auth.Session, req *model.BookingRequest) (*model.Booking, error)
	Accept(ctx context.Context, session auth.Session, id string) (*model.Booking, error)
	Reject(ctx context.Context, session auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error)
	Cancel(ctx context.Context, session auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error)
	GetByID(ctx context.Context, session auth.Session, id string) (*model.Booking, error)
	ListMine(ctx context.Context, session auth.Session) ([]*model.Booking, error)
	AddMessage(ctx context.Context, session auth.Session, id string, req *model.MessageRequest) (*model.Booking, error)
	CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*model.Availability, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	catalog   ItemCatalog
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

// NewBookingService wires the lifecycle engine. A nil lockRepo disables the
// per-item creation lock, leaving the overlap check unguarded against
// concurrent requests.
func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	catalog ItemCatalog,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, session auth.Session, req *model.BookingRequest) (booking *model.Booking, err error) {
	defer func() { metrics.IncBookingOperation("create", outcome(err)) }()

	start, end, err := s.validator.ValidateRequest(req)
	if err != nil {
		return nil, s.invalid("Invalid booking request", err)
	}

	item, err := s.catalog.Lookup(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == session.UserID {
		return nil, apperrors.Forbidden("You cannot book your own item")
	}
	if item.Status != model.ItemActive {
		return nil, apperrors.Conflict("This item is not available for rent")
	}

	if s.lockRepo != nil {
		lock, err := s.acquireItemLock(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		defer s.releaseItemLock(ctx, lock)
	}

	days := model.TotalDays(start, end)
	booking = &model.Booking{
		ItemID:   item.ID,
		RenterID: session.UserID,
		OwnerID:  item.OwnerID,
		Dates: model.BookingDates{
			StartDate: start,
			EndDate:   end,
			TotalDays: days,
		},
		Pricing: model.NewPricing(item.PricePerDay, item.Deposit, days, s.cfg.ServiceFeeRate),
		Status:  model.BookingPending,
	}
	if msg := sanitizer.SanitizeMessage(req.Message); msg != "" {
		booking.Messages = []model.BookingMessage{{
			SenderID:  session.UserID,
			Message:   msg,
			Timestamp: time.Now().UTC(),
		}}
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifyAvailability(txCtx, item.ID, start, end); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "item_id", item.ID, "renter_id", session.UserID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"item_id", booking.ItemID,
		"renter_id", booking.RenterID,
		"start_date", booking.Dates.StartDate,
		"end_date", booking.Dates.EndDate,
		"total_amount", booking.Pricing.TotalAmount,
	)
	s.publish(ctx, events.TypeBookingCreated, booking, session.UserID)
	return booking, nil
}

func (s *bookingService) Accept(ctx context.Context, session auth.Session, id string) (*model.Booking, error) {
	return s.transition(ctx, session, id, model.TransitionAccept, "")
}

func (s *bookingService) Reject(ctx context.Context, session auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error) {
	reason, err := s.reason(req)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, session, id, model.TransitionReject, reason)
}

func (s *bookingService) Cancel(ctx context.Context, session auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error) {
	reason, err := s.reason(req)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, session, id, model.TransitionCancel, reason)
}

func (s *bookingService) GetByID(ctx context.Context, session auth.Session, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindDetailedByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}
	if !booking.IsParty(session.UserID) {
		return nil, apperrors.Forbidden("You are not a party to this booking")
	}
	return booking, nil
}

func (s *bookingService) ListMine(ctx context.Context, session auth.Session) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByParty(ctx, session.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "user_id", session.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) AddMessage(ctx context.Context, session auth.Session, id string, req *model.MessageRequest) (*model.Booking, error) {
	req.Message = sanitizer.SanitizeMessage(req.Message)
	if err := s.validator.ValidateMessage(req); err != nil {
		return nil, s.invalid("Invalid message", err)
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(session.UserID) {
		return nil, apperrors.Forbidden("You are not a party to this booking")
	}

	updated, err := s.repo.AppendMessage(ctx, id, model.BookingMessage{
		SenderID:  session.UserID,
		Message:   req.Message,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to add message")
	}

	s.cfg.Log.Debug("Booking message added", "id", id, "sender_id", session.UserID)
	return updated, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*model.Availability, error) {
	if err := validator.ValidateRange(start, end); err != nil {
		return nil, s.invalid("Invalid date range", err)
	}

	existing, err := s.repo.FindOverlapping(ctx, itemID, start, end)
	if err != nil {
		return nil, apperrors.Internal("Failed to check availability", err)
	}
	if existing == nil {
		return &model.Availability{Available: true}, nil
	}
	dates := existing.Dates
	return &model.Availability{Available: false, Conflicting: &dates}, nil
}

// --- Helpers ---

func (s *bookingService) transition(ctx context.Context, session auth.Session, id string, t model.Transition, reason string) (booking *model.Booking, err error) {
	defer func() { metrics.IncBookingOperation(string(t), outcome(err)) }()

	booking, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.Authorized(booking, session.UserID) {
		if t.OwnerOnly() {
			return nil, apperrors.Forbidden(fmt.Sprintf("Only the owner can %s this booking", t))
		}
		return nil, apperrors.Forbidden(fmt.Sprintf("Only the owner or the renter can %s this booking", t))
	}
	if !t.AllowedFrom(booking.Status) {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot %s a booking that is %s", t, booking.Status))
	}

	if !t.RecordsReason() {
		reason = ""
	}
	updated, err := s.repo.UpdateStatus(ctx, id, t.From(), t.To(), reason)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.InvalidState(fmt.Sprintf("Cannot %s this booking, its status changed", t))
		}
		return nil, s.mapRepoError(err, id, "Failed to update booking")
	}

	s.cfg.Log.Info("Booking status updated successfully",
		"id", id,
		"transition", t,
		"from", booking.Status,
		"to", updated.Status,
		"actor_id", session.UserID,
	)
	s.publish(ctx, events.TypeFor(t), updated, session.UserID)
	return updated, nil
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal(message, err)
}

func (s *bookingService) reason(req *model.TransitionRequest) (string, error) {
	if req == nil {
		return "", nil
	}
	req.Reason = sanitizer.SanitizeMessage(req.Reason)
	if err := s.validator.ValidateTransition(req); err != nil {
		return "", s.invalid("Invalid reason", err)
	}
	return req.Reason, nil
}

func (s *bookingService) invalid(message string, err error) error {
	s.cfg.Log.Warn("Booking validation failed", "error", err)
	appErr := apperrors.InvalidInput(message)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return appErr.WithDetails(verrs.Details())
	}
	return appErr.WithDetails(map[string]any{"error": err.Error()})
}

func (s *bookingService) verifyAvailability(ctx context.Context, itemID string, start, end time.Time) error {
	existing, err := s.repo.FindOverlapping(ctx, itemID, start, end)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if existing != nil {
		return apperrors.Conflict(fmt.Sprintf(
			"Item is already booked from %s to %s",
			existing.Dates.StartDate.Format(time.DateOnly),
			existing.Dates.EndDate.Format(time.DateOnly),
		)).WithDetails(map[string]any{
			"start_date": existing.Dates.StartDate,
			"end_date":   existing.Dates.EndDate,
		})
	}
	return nil
}

// acquireItemLock takes the advisory lock serializing creation on one item.
// A held lock is retried until BookingLockWait elapses.
func (s *bookingService) acquireItemLock(ctx context.Context, itemID string) (*model.BookingLock, error) {
	deadline := time.Now().Add(s.cfg.BookingLockWait)
	contended := false

	for {
		lock := &model.BookingLock{
			ID:        model.BookingLockID(itemID),
			ItemID:    itemID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().UTC().Add(s.cfg.BookingLockTTL),
		}
		err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Internal("Failed to acquire booking lock", err)
		}
		if !contended {
			contended = true
			metrics.IncLockContention(s.lockRepo.Backend())
		}

		wait := min(lockRetryInterval, time.Until(deadline))
		if wait <= 0 {
			return nil, apperrors.New(
				bookingserrors.CodeBookingInProgress,
				"This item is currently being booked by another request. Please try again.",
				http.StatusConflict,
			)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, apperrors.Timeout("Timed out waiting for the booking lock")
		case <-timer.C:
		}
	}
}

// releaseItemLock runs even when the request context is already cancelled,
// bounded by the store operation timeout.
func (s *bookingService) releaseItemLock(ctx context.Context, lock *model.BookingLock) {
	timeout := s.cfg.MongoOperationTimeout
	if timeout <= 0 {
		timeout = config.DefaultMongoOperationTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.lockRepo.Release(ctx, lock); err != nil {
		s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lock.ID, "error", err)
	}
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking, actorID string) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, b, actorID)); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperrors.AsAppError(err).Code
}
