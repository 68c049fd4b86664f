package handler

import (
	"context"
	"net/http"
	"time"

	"locmaroc/internal/items/service"
	"locmaroc/pkg/auth"
	apperrors "locmaroc/pkg/errors"
	httputil "locmaroc/pkg/http"
	"locmaroc/pkg/logger"
	"locmaroc/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// AvailabilityChecker answers whether an item is free for a date range.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*model.Availability, error)
}

type ItemHandler struct {
	service      service.ItemService
	availability AvailabilityChecker
	guard        *auth.Guard
	log          *logger.Logger
}

func NewItemHandler(service service.ItemService, availability AvailabilityChecker, guard *auth.Guard, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service:      service,
		availability: availability,
		guard:        guard,
		log:          log,
	}
}

func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	minPrice, err := h.price(r, "min_price")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	maxPrice, err := h.price(r, "max_price")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	result, err := h.service.Search(r.Context(), model.ItemFilter{
		Category:  query.Get("category"),
		City:      query.Get("city"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Condition: query.Get("condition"),
		Search:    query.Get("search"),
		Sort:      query.Get("sort"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

// price treats "all" like an absent bound.
func (h *ItemHandler) price(r *http.Request, name string) (*float64, error) {
	if r.URL.Query().Get(name) == "all" {
		return nil, nil
	}
	return httputil.ExtractFloat(r, name)
}

func (h *ItemHandler) Popular(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractInt(r, "limit", model.DefaultPopularLimit)
	if err != nil {
		h.writeError(w, "Popular", err)
		return
	}

	items, err := h.service.Popular(r.Context(), limit)
	if err != nil {
		h.writeError(w, "Popular", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "Popular", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) ListByOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	result, err := h.service.ListByOwner(r.Context(), ps.ByName("id"), page, limit)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByOwner", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	start, err := model.ParseDate(query.Get("start_date"))
	if err != nil {
		h.writeError(w, "Availability", apperrors.InvalidInput("invalid start_date: "+err.Error()))
		return
	}
	end, err := model.ParseDate(query.Get("end_date"))
	if err != nil {
		h.writeError(w, "Availability", apperrors.InvalidInput("invalid end_date: "+err.Error()))
		return
	}

	item, err := h.service.Lookup(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	availability, err := h.availability.CheckAvailability(r.Context(), item.ID, start, end)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	if item.Status != model.ItemActive {
		availability = &model.Availability{Available: false}
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "Create")
	if !ok {
		return
	}

	var item model.Item
	if err := httputil.DecodeJSON(r, &item, false); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	created, err := h.service.Create(r.Context(), session, &item)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "Update")
	if !ok {
		return
	}

	var updates model.ItemUpdate
	if err := httputil.DecodeJSON(r, &updates, false); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	updated, err := h.service.Update(r.Context(), session, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "Delete")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), session, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "ListMine")
	if !ok {
		return
	}

	items, err := h.service.ListMine(r.Context(), session)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ItemHandler) session(w http.ResponseWriter, r *http.Request, name string) (auth.Session, bool) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
	}
	return session, ok
}

func (h *ItemHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ItemHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/items", h.Search)
	router.GET("/api/v1/items/mine", h.guard.Required(h.ListMine))
	router.GET("/api/v1/items/popular", h.Popular)
	router.GET("/api/v1/items/id/:id", h.GetByID)
	router.GET("/api/v1/items/id/:id/availability", h.Availability)
	router.POST("/api/v1/items", h.guard.Required(h.Create))
	router.PUT("/api/v1/items/id/:id", h.guard.Required(h.Update))
	router.DELETE("/api/v1/items/id/:id", h.guard.Required(h.Delete))
	router.GET("/api/v1/users/id/:id/items", h.ListByOwner)
}
