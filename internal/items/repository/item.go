package repository

import (
	"context"
	"errors"
	"fmt"
	itemserrors "locmaroc/internal/items/errors"
	"locmaroc/pkg/config"
	"locmaroc/pkg/model"
	"locmaroc/pkg/sanitizer"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Items"

	categoryAll   = "all"
	categoryAllFR = "tous"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id string) (*model.Item, error)
	// IncrementViews bumps the view counter and returns the updated item.
	IncrementViews(ctx context.Context, id string) (*model.Item, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Item, error)
	Search(ctx context.Context, filter model.ItemFilter) ([]*model.Item, error)
	// Popular returns active items ordered by views, then rental count.
	Popular(ctx context.Context, limit int) ([]*model.Item, error)
	Count(ctx context.Context, filter model.ItemFilter) (int64, error)
	Update(ctx context.Context, id string, item *model.Item) (*model.Item, error)
	Delete(ctx context.Context, id string) error
}

type mongoItemRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoItemRepository(cfg *config.Config) ItemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoItemRepository{
		collection: db.Collection(CollectionName),
		timeout:    cfg.MongoOperationTimeout,
	}
}

func (r *mongoItemRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < r.timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *mongoItemRepository) Create(ctx context.Context, item *model.Item) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	item.CreatedAt = now
	item.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *mongoItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	var item model.Item
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", itemserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

func (r *mongoItemRepository) IncrementViews(ctx context.Context, id string) (*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item model.Item
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", itemserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to increment item views: %w", err)
	}
	return &item, nil
}

func (r *mongoItemRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find items for owner [%s]: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	items := []*model.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

func (r *mongoItemRepository) Search(ctx context.Context, filter model.ItemFilter) ([]*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(filter.Limit)).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetSort(SortFor(filter.Sort))

	cursor, err := r.collection.Find(ctx, SearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return items, nil
}

func (r *mongoItemRepository) Popular(ctx context.Context, limit int) ([]*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "rental_count", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"status": model.ItemActive}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find popular items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode popular items: %w", err)
	}
	return items, nil
}

func (r *mongoItemRepository) Count(ctx context.Context, filter model.ItemFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, SearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// SearchFilter builds the catalog query. Only active items are listed.
func SearchFilter(f model.ItemFilter) bson.M {
	filter := bson.M{"status": model.ItemActive}

	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Category != "" && f.Category != categoryAll && f.Category != categoryAllFR {
		filter["category"] = f.Category
	}
	if f.Condition != "" {
		filter["condition"] = f.Condition
	}
	if city := sanitizer.SearchPattern(f.City); city != "" {
		filter["location.city"] = primitive.Regex{Pattern: city, Options: "i"}
	}
	if price := priceRange(f.MinPrice, f.MaxPrice); price != nil {
		filter["price_per_day"] = price
	}
	if search := sanitizer.SearchPattern(f.Search); search != "" {
		re := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": re},
			{"description": re},
			{"specifications.brand": re},
			{"specifications.model": re},
		}
	}
	return filter
}

func priceRange(minPrice, maxPrice *float64) bson.M {
	if minPrice == nil && maxPrice == nil {
		return nil
	}
	price := bson.M{}
	if minPrice != nil {
		price["$gte"] = *minPrice
	}
	if maxPrice != nil {
		price["$lte"] = *maxPrice
	}
	return price
}

// SortFor maps a listing sort key to its order. Unknown keys sort newest
// first. Ties break on _id so pages stay stable.
func SortFor(sort string) bson.D {
	switch sort {
	case model.SortPriceLow, "price-asc":
		return bson.D{{Key: "price_per_day", Value: 1}, {Key: "_id", Value: 1}}
	case model.SortPriceHigh, "price-desc":
		return bson.D{{Key: "price_per_day", Value: -1}, {Key: "_id", Value: 1}}
	case model.SortPopular:
		return bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func (r *mongoItemRepository) Update(ctx context.Context, id string, item *model.Item) (*model.Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"title":          item.Title,
			"description":    item.Description,
			"category":       item.Category,
			"price_per_day":  item.PricePerDay,
			"deposit":        item.Deposit,
			"images":         item.Images,
			"location":       item.Location,
			"features":       item.Features,
			"condition":      item.Condition,
			"status":         item.Status,
			"specifications": item.Specifications,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Item
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", itemserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &updated, nil
}

func (r *mongoItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", itemserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", itemserrors.ErrNotFound, id)
	}
	return nil
}
