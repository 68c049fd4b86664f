package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	itemserrors "locmaroc/internal/items/errors"
	"locmaroc/internal/items/validator"
	"locmaroc/pkg/auth"
	"locmaroc/pkg/config"
	apperrors "locmaroc/pkg/errors"
	"locmaroc/pkg/logger"
	"locmaroc/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID    = "aaaaaaaaaaaaaaaaaaaaaaaa"
	strangerID = "cccccccccccccccccccccccc"
)

type fakeItemRepo struct {
	mu      sync.Mutex
	items   map[string]*model.Item
	seq     int
	failAll error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[string]*model.Item{}}
}

func (r *fakeItemRepo) Create(_ context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.seq++
	item.ID = fmt.Sprintf("%024x", r.seq)
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id string) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(id) != 24 {
		return nil, itemserrors.ErrInvalidID
	}
	item, ok := r.items[id]
	if !ok {
		return nil, itemserrors.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeItemRepo) IncrementViews(ctx context.Context, id string) (*model.Item, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].Views++
	cp := *r.items[id]
	return &cp, nil
}

func (r *fakeItemRepo) FindByOwner(_ context.Context, ownerID string) ([]*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Item{}
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) matching(f model.ItemFilter) []*model.Item {
	out := []*model.Item{}
	for _, item := range r.items {
		if item.Status != model.ItemActive {
			continue
		}
		if f.Category != "" && f.Category != "all" && item.Category != f.Category {
			continue
		}
		if f.OwnerID != "" && item.OwnerID != f.OwnerID {
			continue
		}
		if f.Condition != "" && item.Condition != f.Condition {
			continue
		}
		if f.MinPrice != nil && item.PricePerDay < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && item.PricePerDay > *f.MaxPrice {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PricePerDay < out[j].PricePerDay })
	return out
}

func (r *fakeItemRepo) Search(_ context.Context, f model.ItemFilter) ([]*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	all := r.matching(f)
	start := min((f.Page-1)*f.Limit, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], nil
}

func (r *fakeItemRepo) Popular(_ context.Context, limit int) ([]*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	all := r.matching(model.ItemFilter{})
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Views != all[j].Views {
			return all[i].Views > all[j].Views
		}
		return all[i].RentalCount > all[j].RentalCount
	})
	return all[:min(limit, len(all))], nil
}

func (r *fakeItemRepo) Count(_ context.Context, f model.ItemFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, r.failAll
	}
	return int64(len(r.matching(f))), nil
}

func (r *fakeItemRepo) Update(_ context.Context, id string, item *model.Item) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return nil, itemserrors.ErrNotFound
	}
	cp := *item
	r.items[id] = &cp
	out := cp
	return &out, nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return itemserrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeOwners map[string]*model.PublicProfile

func (o fakeOwners) PublicProfile(_ context.Context, userID string) (*model.PublicProfile, error) {
	profile, ok := o[userID]
	if !ok {
		return nil, apperrors.NotFoundWithID("User", userID)
	}
	return profile, nil
}

func newTestService(t *testing.T) (ItemService, *fakeItemRepo) {
	t.Helper()
	cfg := &config.Config{Log: logger.Nop()}
	repo := newFakeItemRepo()
	owners := fakeOwners{
		ownerID: {ID: ownerID, FirstName: "Youssef", LastName: "Alami", TrustScore: 50},
	}
	return NewItemService(repo, owners, validator.NewItemValidator(cfg.Log), cfg), repo
}

func drill() *model.Item {
	return &model.Item{
		Title:       "  Perceuse   Bosch ",
		Description: "Perceuse à percussion, deux batteries incluses.",
		Category:    "Outils",
		PricePerDay: 80,
		Deposit:     300,
		Location:    model.Location{City: " Casablanca "},
		Features:    []string{"sans fil", " sans fil ", ""},
	}
}

func TestCreate_AppliesOwnerAndDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	input := drill()
	input.OwnerID = strangerID
	input.Views = 99
	item, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, input)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, ownerID, item.OwnerID)
	assert.Equal(t, model.ItemActive, item.Status)
	assert.Equal(t, model.DefaultItemCondition, item.Condition)
	assert.Equal(t, "Perceuse Bosch", item.Title)
	assert.Equal(t, "outils", item.Category)
	assert.Equal(t, "Casablanca", item.Location.City)
	assert.Equal(t, []string{"sans fil"}, item.Features)
	assert.Zero(t, item.Views)
}

func TestCreate_Validation(t *testing.T) {
	svc, repo := newTestService(t)

	input := drill()
	input.Title = "ab"
	input.Category = "bijoux"
	input.PricePerDay = -1
	input.Location.City = ""

	_, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, input)

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "title")
	assert.Contains(t, appErr.Details, "category")
	assert.Contains(t, appErr.Details, "price_per_day")
	assert.Contains(t, appErr.Details, "location.city")
	assert.Empty(t, repo.items)
}

func TestGet_IncrementsViews(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, drill())
	require.NoError(t, err)

	first, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Views)
	assert.Equal(t, 2, second.Views)

	looked, err := svc.Lookup(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, looked.Views, "lookup must not count a view")
}

func TestGet_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "ffffffffffffffffffffffff")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Lookup(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Lookup(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, drill())
	require.NoError(t, err)

	price := 95.0
	inactive := model.ItemInactive
	updated, err := svc.Update(context.Background(), auth.Session{UserID: ownerID}, created.ID, &model.ItemUpdate{
		PricePerDay: &price,
		Status:      &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, updated.PricePerDay)
	assert.Equal(t, model.ItemInactive, updated.Status)
	assert.Equal(t, "Perceuse Bosch", updated.Title, "untouched fields are kept")

	_, err = svc.Update(context.Background(), auth.Session{UserID: strangerID}, created.ID, &model.ItemUpdate{PricePerDay: &price})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	bad := -5.0
	_, err = svc.Update(context.Background(), auth.Session{UserID: ownerID}, created.ID, &model.ItemUpdate{Deposit: &bad})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService(t)
	created, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, drill())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), auth.Session{UserID: strangerID}, created.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Len(t, repo.items, 1)

	require.NoError(t, svc.Delete(context.Background(), auth.Session{UserID: ownerID}, created.ID))
	assert.Empty(t, repo.items)

	err = svc.Delete(context.Background(), auth.Session{UserID: ownerID}, created.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestSearch_Pagination(t *testing.T) {
	svc, _ := newTestService(t)
	for i := range 30 {
		item := drill()
		item.PricePerDay = float64(10 + i)
		_, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, item)
		require.NoError(t, err)
	}

	page, err := svc.Search(context.Background(), model.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, config.DefaultPageLimit)
	assert.Equal(t, model.Pagination{Current: 1, Pages: 3, Total: 30, Limit: 12}, page.Pagination)

	page, err = svc.Search(context.Background(), model.ItemFilter{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)

	maxPrice := 14.0
	page, err = svc.Search(context.Background(), model.ItemFilter{MaxPrice: &maxPrice, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, config.DefaultPaginationLimit, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestSearch_Errors(t *testing.T) {
	svc, repo := newTestService(t)

	negative := -1.0
	_, err := svc.Search(context.Background(), model.ItemFilter{MaxPrice: &negative})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	repo.failAll = errors.New("mongo down")
	_, err = svc.Search(context.Background(), model.ItemFilter{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestSearch_FilterChecks(t *testing.T) {
	svc, _ := newTestService(t)
	low, high, negative := 10.0, 50.0, -1.0

	tests := []struct {
		name   string
		filter model.ItemFilter
	}{
		{"negative min", model.ItemFilter{MinPrice: &negative}},
		{"inverted range", model.ItemFilter{MinPrice: &high, MaxPrice: &low}},
		{"unknown condition", model.ItemFilter{Condition: "cassé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.filter)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestSearch_PriceRangeAndCondition(t *testing.T) {
	svc, _ := newTestService(t)
	for i, condition := range []string{"neuf", "bon-etat", "neuf"} {
		item := drill()
		item.PricePerDay = float64(20 * (i + 1))
		item.Condition = condition
		_, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, item)
		require.NoError(t, err)
	}

	minPrice := 30.0
	page, err := svc.Search(context.Background(), model.ItemFilter{MinPrice: &minPrice, Condition: "neuf"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 60.0, page.Items[0].PricePerDay)
}

func TestPopular(t *testing.T) {
	svc, repo := newTestService(t)
	for i := range 10 {
		item, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, drill())
		require.NoError(t, err)
		repo.items[item.ID].Views = i
	}

	items, err := svc.Popular(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, model.DefaultPopularLimit)
	assert.Equal(t, 9, items[0].Views)

	items, err = svc.Popular(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	repo.failAll = errors.New("mongo down")
	_, err = svc.Popular(context.Background(), 3)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestListByOwner(t *testing.T) {
	svc, _ := newTestService(t)
	for range 3 {
		_, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, drill())
		require.NoError(t, err)
	}
	hidden := drill()
	hidden.Status = model.ItemInactive
	_, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, hidden)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), auth.Session{UserID: strangerID}, drill())
	require.NoError(t, err)

	result, err := svc.ListByOwner(context.Background(), ownerID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, "Youssef", result.User.FirstName)
	assert.Equal(t, model.Pagination{Current: 1, Pages: 2, Total: 3, Limit: 2}, result.Pagination)

	_, err = svc.ListByOwner(context.Background(), strangerID, 1, 12)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "owner without a profile")

	_, err = svc.ListByOwner(context.Background(), "", 1, 12)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestListMine(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), auth.Session{UserID: ownerID}, drill())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), auth.Session{UserID: strangerID}, drill())
	require.NoError(t, err)

	mine, err := svc.ListMine(context.Background(), auth.Session{UserID: ownerID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
