package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "locmaroc/internal/bookings/errors"
	itemsrepo "locmaroc/internal/items/repository"
	usersrepo "locmaroc/internal/users/repository"
	"locmaroc/pkg/config"
	mongotx "locmaroc/pkg/db/mongo"
	"locmaroc/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// FindDetailedByID is FindByID with the item and party summaries joined.
	FindDetailedByID(ctx context.Context, id string) (*model.Booking, error)
	// FindByParty lists the user's bookings as renter or owner, newest first,
	// with the item and party summaries joined.
	FindByParty(ctx context.Context, userID string) ([]*model.Booking, error)
	// FindOverlapping returns one blocking booking of the item whose range
	// overlaps [start, end], or nil.
	FindOverlapping(ctx context.Context, itemID string, start, end time.Time) (*model.Booking, error)
	// UpdateStatus moves the booking to `to` only while its status is one of
	// `from`, returning the updated document.
	UpdateStatus(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, reason string) (*model.Booking, error)
	AppendMessage(ctx context.Context, id string, msg model.BookingMessage) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
	timeout    time.Duration
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	txManager := mongotx.NewDirectManager()
	if cfg.MongoTransactions {
		txManager = mongotx.NewTransactionManager(cfg.Client.Mongo)
	}
	return &mongoBookingRepository{
		collection: db.Collection(CollectionName),
		txManager:  txManager,
		timeout:    cfg.MongoOperationTimeout,
	}
}

// withTimeout bounds the operation unless it runs inside a session, whose
// context is owned by the transaction.
func (r *mongoBookingRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if mongo.SessionFromContext(ctx) != nil {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < r.timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindDetailedByID(ctx context.Context, id string) (*model.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	bookings, err := r.aggregate(ctx, DetailPipeline(bson.M{"_id": objectID}))
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return bookings[0], nil
}

func (r *mongoBookingRepository) FindByParty(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.aggregate(ctx, DetailPipeline(bson.M{"$or": []bson.M{
		{"renter_id": userID},
		{"owner_id": userID},
	}}))
}

func (r *mongoBookingRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// DetailPipeline matches bookings newest first and joins the item and both
// parties. A dangling reference leaves its summary empty.
func DetailPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		lookupOne(itemsrepo.CollectionName, "item_id", "item", bson.M{
			"title":         1,
			"images":        1,
			"price_per_day": 1,
			"location":      1,
		}),
		unwind("item"),
		lookupOne(usersrepo.CollectionName, "renter_id", "renter", partyProjection),
		unwind("renter"),
		lookupOne(usersrepo.CollectionName, "owner_id", "owner", partyProjection),
		unwind("owner"),
	}
}

var partyProjection = bson.M{
	"first_name":  1,
	"last_name":   1,
	"trust_score": 1,
}

// lookupOne joins the document whose ObjectID is the hex string in
// localField.
func lookupOne(from, localField, as string, projection bson.M) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from": from,
		"let": bson.M{"ref": bson.M{"$convert": bson.M{
			"input":   "$" + localField,
			"to":      "objectId",
			"onError": nil,
			"onNull":  nil,
		}}},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$ref"}}}},
			bson.M{"$project": projection},
		},
		"as": as,
	}}}
}

func unwind(field string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       "$" + field,
		"preserveNullAndEmptyArrays": true,
	}}}
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, itemID string, start, end time.Time) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "dates.start_date", Value: 1}})

	var booking model.Booking
	err := r.collection.FindOne(ctx, OverlapFilter(itemID, start, end), opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	return &booking, nil
}

// OverlapFilter matches blocking bookings of an item whose range shares at
// least one instant with [start, end]. Bounds are inclusive.
func OverlapFilter(itemID string, start, end time.Time) bson.M {
	return bson.M{
		"item_id":          itemID,
		"status":           bson.M{"$in": model.BlockingStatuses},
		"dates.start_date": bson.M{"$lte": end},
		"dates.end_date":   bson.M{"$gte": start},
	}
}

func (r *mongoBookingRepository) UpdateStatus(
	ctx context.Context,
	id string,
	from []model.BookingStatus,
	to model.BookingStatus,
	reason string,
) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if reason != "" {
		set["cancellation_reason"] = reason
	}

	filter := bson.M{"_id": objectID, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) AppendMessage(ctx context.Context, id string, msg model.BookingMessage) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to append booking message: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
