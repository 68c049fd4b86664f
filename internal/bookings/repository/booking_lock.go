package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "locmaroc/internal/bookings/errors"
	"locmaroc/pkg/config"
	"locmaroc/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LockCollectionName = "Booking_locks"

var errMissingLockToken = errors.New("booking lock has no token")

// BookingLockRepository holds advisory locks that serialize booking
// creation per item.
type BookingLockRepository interface {
	// Create returns ErrLockHeld when an unexpired lock with the same id exists.
	Create(ctx context.Context, lock *model.BookingLock) error
	// Release removes the lock only while lock.Token still holds it.
	Release(ctx context.Context, lock *model.BookingLock) error
	Backend() string
}

// lockCollection is the part of *mongo.Collection the lock repository uses.
type lockCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type mongoBookingLockRepository struct {
	collection lockCollection
	now        func() time.Time
}

func NewMongoBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return newMongoBookingLockRepository(db.Collection(LockCollectionName))
}

func newMongoBookingLockRepository(collection lockCollection) *mongoBookingLockRepository {
	return &mongoBookingLockRepository{
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *mongoBookingLockRepository) Backend() string {
	return config.BackendMongo
}

// Create inserts the lock document. The TTL index only reaps expired locks
// about once a minute, so an expired holder is removed here before one
// retry.
func (r *mongoBookingLockRepository) Create(ctx context.Context, lock *model.BookingLock) error {
	if lock.Token == "" {
		return errMissingLockToken
	}
	lock.CreatedAt = r.now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create booking lock: %w", err)
	}

	res, delErr := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lt": lock.CreatedAt},
	})
	if delErr != nil || res.DeletedCount == 0 {
		return bookingserrors.ErrLockHeld
	}

	if _, err = r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to create booking lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	if lock.Token == "" {
		return errMissingLockToken
	}
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "token": lock.Token})
	if err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
