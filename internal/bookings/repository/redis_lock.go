package repository

import (
	"context"
	"fmt"
	bookingserrors "locmaroc/internal/bookings/errors"
	"locmaroc/pkg/config"
	"locmaroc/pkg/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so a
// holder whose lock expired cannot release the next holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisBookingLockRepository struct {
	client *redis.Client
}

func NewRedisBookingLockRepository(client *redis.Client) BookingLockRepository {
	return &redisBookingLockRepository{client: client}
}

func (r *redisBookingLockRepository) Backend() string {
	return config.BackendRedis
}

func lockKey(lockID string) string {
	return "lock:" + lockID
}

func (r *redisBookingLockRepository) Create(ctx context.Context, lock *model.BookingLock) error {
	if lock.Token == "" {
		return errMissingLockToken
	}
	lock.CreatedAt = time.Now().UTC()
	ttl := time.Until(lock.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("booking lock %s already expired", lock.ID)
	}

	ok, err := r.client.SetNX(ctx, lockKey(lock.ID), lock.Token, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create booking lock: %w", err)
	}
	if !ok {
		return bookingserrors.ErrLockHeld
	}
	return nil
}

func (r *redisBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	if lock.Token == "" {
		return errMissingLockToken
	}
	if err := releaseScript.Run(ctx, r.client, []string{lockKey(lock.ID)}, lock.Token).Err(); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
