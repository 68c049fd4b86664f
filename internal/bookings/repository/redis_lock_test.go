package repository

import (
	"context"
	"testing"
	"time"

	bookingserrors "locmaroc/internal/bookings/errors"
	"locmaroc/pkg/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocks(t *testing.T) (*miniredis.Miniredis, BookingLockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisBookingLockRepository(client)
}

func newLock(itemID string, ttl time.Duration) *model.BookingLock {
	return &model.BookingLock{
		ID:        model.BookingLockID(itemID),
		ItemID:    itemID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestRedisLock_AcquireRelease(t *testing.T) {
	mr, locks := newRedisLocks(t)
	ctx := context.Background()

	first := newLock("item-1", 30*time.Second)
	require.NoError(t, locks.Create(ctx, first))
	assert.True(t, mr.Exists("lock:booking_lock_item-1"))

	err := locks.Create(ctx, newLock("item-1", 30*time.Second))
	assert.ErrorIs(t, err, bookingserrors.ErrLockHeld)

	require.NoError(t, locks.Create(ctx, newLock("item-2", 30*time.Second)), "other items are independent")

	require.NoError(t, locks.Release(ctx, first))
	assert.False(t, mr.Exists("lock:booking_lock_item-1"))
	require.NoError(t, locks.Create(ctx, newLock("item-1", 30*time.Second)))
}

func TestRedisLock_Expires(t *testing.T) {
	mr, locks := newRedisLocks(t)
	ctx := context.Background()

	require.NoError(t, locks.Create(ctx, newLock("item-1", 5*time.Second)))
	mr.FastForward(6 * time.Second)

	require.NoError(t, locks.Create(ctx, newLock("item-1", 5*time.Second)))
}

func TestRedisLock_StaleReleaseKeepsSuccessorLock(t *testing.T) {
	mr, locks := newRedisLocks(t)
	ctx := context.Background()

	stale := newLock("item-1", 5*time.Second)
	require.NoError(t, locks.Create(ctx, stale))
	mr.FastForward(6 * time.Second)

	successor := newLock("item-1", 5*time.Second)
	require.NoError(t, locks.Create(ctx, successor))

	require.NoError(t, locks.Release(ctx, stale))
	require.True(t, mr.Exists("lock:booking_lock_item-1"), "successor lock must survive a stale release")
	got, err := mr.Get("lock:booking_lock_item-1")
	require.NoError(t, err)
	assert.Equal(t, successor.Token, got)

	require.NoError(t, locks.Release(ctx, successor))
	assert.False(t, mr.Exists("lock:booking_lock_item-1"))
}

func TestRedisLock_RejectsExpiredOrUntokenedRequest(t *testing.T) {
	_, locks := newRedisLocks(t)
	ctx := context.Background()

	assert.Error(t, locks.Create(ctx, newLock("item-1", -time.Second)))

	untokened := newLock("item-1", time.Second)
	untokened.Token = ""
	assert.Error(t, locks.Create(ctx, untokened))
	assert.Error(t, locks.Release(ctx, untokened))
}
