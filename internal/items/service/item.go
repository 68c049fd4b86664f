package service

import (
	"context"
	"errors"
	itemserrors "locmaroc/internal/items/errors"
	"locmaroc/internal/items/repository"
	"locmaroc/internal/items/validator"
	"locmaroc/pkg/auth"
	"locmaroc/pkg/config"
	apperrors "locmaroc/pkg/errors"
	"locmaroc/pkg/model"
	"locmaroc/pkg/sanitizer"
	"math"
	"slices"
	"sync"
)

type ItemService interface {
	Search(ctx context.Context, filter model.ItemFilter) (*model.ItemPage, error)
	Get(ctx context.Context, id string) (*model.Item, error)
	Lookup(ctx context.Context, id string) (*model.Item, error)
	Create(ctx context.Context, session auth.Session, item *model.Item) (*model.Item, error)
	Update(ctx context.Context, session auth.Session, id string, updates *model.ItemUpdate) (*model.Item, error)
	Delete(ctx context.Context, session auth.Session, id string) error
	ListMine(ctx context.Context, session auth.Session) ([]*model.Item, error)
	Popular(ctx context.Context, limit int) ([]*model.Item, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) (*model.OwnerItemsPage, error)
}

// OwnerDirectory resolves the public profile shown next to an owner's
// listings. It returns AppErrors.
type OwnerDirectory interface {
	PublicProfile(ctx context.Context, userID string) (*model.PublicProfile, error)
}

type itemService struct {
	repo      repository.ItemRepository
	owners    OwnerDirectory
	validator *validator.ItemValidator
	cfg       *config.Config
}

func NewItemService(repo repository.ItemRepository, owners OwnerDirectory, validator *validator.ItemValidator, cfg *config.Config) ItemService {
	return &itemService{
		repo:      repo,
		owners:    owners,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *itemService) Search(ctx context.Context, filter model.ItemFilter) (*model.ItemPage, error) {
	filter.Page = config.NormalizePage(filter.Page)
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	return s.search(ctx, filter)
}

func (s *itemService) Popular(ctx context.Context, limit int) ([]*model.Item, error) {
	if limit <= 0 {
		limit = model.DefaultPopularLimit
	}
	limit = min(limit, model.MaxPopularLimit)

	items, err := s.repo.Popular(ctx, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to list popular items", "error", err)
		return nil, apperrors.Internal("Failed to retrieve popular items", err)
	}
	return items, nil
}

// ListByOwner pages through one owner's active listings, newest first.
func (s *itemService) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*model.OwnerItemsPage, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	owner, err := s.owners.PublicProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := s.search(ctx, model.ItemFilter{
		OwnerID: ownerID,
		Sort:    model.SortNewest,
		Page:    config.NormalizePage(page),
		Limit:   config.NormalizePaginationLimit(limit),
	})
	if err != nil {
		return nil, err
	}
	return &model.OwnerItemsPage{
		Items:      result.Items,
		User:       owner,
		Pagination: result.Pagination,
	}, nil
}

func checkFilter(f model.ItemFilter) error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return apperrors.InvalidInput("min_price cannot be negative")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return apperrors.InvalidInput("max_price cannot be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperrors.InvalidInput("min_price cannot exceed max_price")
	}
	if f.Condition != "" && !slices.Contains(model.ItemConditions, f.Condition) {
		return apperrors.InvalidInput("unknown condition: " + f.Condition)
	}
	return nil
}

func (s *itemService) search(ctx context.Context, filter model.ItemFilter) (*model.ItemPage, error) {
	var count int64
	var items []*model.Item
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count items", "error", errCount)
			errCount = apperrors.Internal("Failed to count items", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		items, errFind = s.repo.Search(ctx, filter)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search items", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve items", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}

	s.cfg.Log.Debug("Item search completed",
		"category", filter.Category,
		"city", filter.City,
		"owner_id", filter.OwnerID,
		"count", len(items),
		"total_count", count,
	)
	return &model.ItemPage{
		Items: items,
		Pagination: model.Pagination{
			Current: filter.Page,
			Pages:   int(math.Ceil(float64(count) / float64(filter.Limit))),
			Total:   count,
			Limit:   filter.Limit,
		},
	}, nil
}

func (s *itemService) Get(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Item ID cannot be empty")
	}
	item, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve item")
	}
	return item, nil
}

// Lookup reads an item without counting a view.
func (s *itemService) Lookup(ctx context.Context, id string) (*model.Item, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Item ID cannot be empty")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve item")
	}
	return item, nil
}

func (s *itemService) Create(ctx context.Context, session auth.Session, item *model.Item) (*model.Item, error) {
	item.ID = ""
	item.OwnerID = session.UserID
	item.RentalCount = 0
	item.Views = 0
	s.applyDefaults(item)
	s.sanitize(item)
	if err := s.validate(item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create item", "owner_id", session.UserID, "error", err)
		return nil, apperrors.Internal("Failed to create item", err)
	}

	s.cfg.Log.Info("Item created successfully",
		"id", item.ID,
		"owner_id", item.OwnerID,
		"category", item.Category,
		"price_per_day", item.PricePerDay,
	)
	return item, nil
}

func (s *itemService) Update(ctx context.Context, session auth.Session, id string, updates *model.ItemUpdate) (*model.Item, error) {
	existing, err := s.loadOwned(ctx, session, id, "modify")
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Item update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	merged := s.mergeItemUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, merged)
	if err != nil {
		s.cfg.Log.Error("Failed to update item", "id", id, "error", err)
		return nil, s.mapRepoError(err, id, "Failed to update item")
	}

	s.cfg.Log.Info("Item updated successfully", "id", id)
	return updated, nil
}

func (s *itemService) Delete(ctx context.Context, session auth.Session, id string) error {
	if _, err := s.loadOwned(ctx, session, id, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete item")
	}

	s.cfg.Log.Info("Item deleted successfully", "id", id)
	return nil
}

func (s *itemService) ListMine(ctx context.Context, session auth.Session) ([]*model.Item, error) {
	items, err := s.repo.FindByOwner(ctx, session.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list owner items", "owner_id", session.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve your items", err)
	}
	return items, nil
}

// --- Helpers ---

func (s *itemService) loadOwned(ctx context.Context, session auth.Session, id, action string) (*model.Item, error) {
	item, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != session.UserID {
		return nil, apperrors.Forbidden("Not allowed to " + action + " this item")
	}
	return item, nil
}

func (s *itemService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, itemserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Item", id)
	}
	if errors.Is(err, itemserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid item ID format")
	}
	return apperrors.Internal(message, err)
}

func (s *itemService) applyDefaults(item *model.Item) {
	if item.Status == "" {
		item.Status = model.ItemActive
	}
	if item.Condition == "" {
		item.Condition = model.DefaultItemCondition
	}
}

func (s *itemService) sanitize(item *model.Item) {
	item.Title = sanitizer.SanitizeText(item.Title)
	item.Description = sanitizer.SanitizeMessage(item.Description)
	item.Category = sanitizer.SanitizeCategory(item.Category)
	item.Condition = sanitizer.SanitizeCategory(item.Condition)
	item.Location.Address = sanitizer.SanitizeText(item.Location.Address)
	item.Location.City = sanitizer.SanitizeText(item.Location.City)
	item.Location.PostalCode = sanitizer.SanitizeText(item.Location.PostalCode)
	item.Features = sanitizer.SanitizeSlice(item.Features, sanitizer.SanitizeText)
	for i := range item.Images {
		item.Images[i].URL = sanitizer.SanitizeURL(item.Images[i].URL)
	}
}

func (s *itemService) mergeItemUpdates(existing *model.Item, updates *model.ItemUpdate) *model.Item {
	merged := *existing

	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Category != nil {
		merged.Category = *updates.Category
	}
	if updates.PricePerDay != nil {
		merged.PricePerDay = *updates.PricePerDay
	}
	if updates.Deposit != nil {
		merged.Deposit = *updates.Deposit
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Features != nil {
		merged.Features = *updates.Features
	}
	if updates.Condition != nil {
		merged.Condition = *updates.Condition
	}
	if updates.Status != nil {
		merged.Status = *updates.Status
	}
	if updates.Specifications != nil {
		merged.Specifications = updates.Specifications
	}

	return &merged
}

func (s *itemService) validate(item *model.Item) error {
	if err := s.validator.Validate(item); err != nil {
		s.cfg.Log.Warn("Item validation failed", "error", err)
		return validationError("Item validation failed", err)
	}
	return nil
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
