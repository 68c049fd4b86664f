package handler

import (
	"context"
	"net/http"

	"locmaroc/internal/bookings/service"
	"locmaroc/pkg/auth"
	apperrors "locmaroc/pkg/errors"
	httputil "locmaroc/pkg/http"
	"locmaroc/pkg/logger"
	"locmaroc/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	guard   *auth.Guard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guard *auth.Guard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "Create")
	if !ok {
		return
	}

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), session, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "ListMine")
	if !ok {
		return
	}

	bookings, err := h.service.ListMine(r.Context(), session)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "GetByID")
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), session, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "Accept")
	if !ok {
		return
	}

	booking, err := h.service.Accept(r.Context(), session, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Accept", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Accept", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.withReason(w, r, ps, "Reject", h.service.Reject)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.withReason(w, r, ps, "Cancel", h.service.Cancel)
}

type reasonTransition func(ctx context.Context, session auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error)

func (h *BookingHandler) withReason(w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string, apply reasonTransition) {
	session, ok := h.session(w, r, name)
	if !ok {
		return
	}

	var req model.TransitionRequest
	if err := httputil.DecodeJSON(r, &req, true); err != nil {
		h.writeError(w, name, err)
		return
	}

	booking, err := apply(r.Context(), session, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) AddMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "AddMessage")
	if !ok {
		return
	}

	var req model.MessageRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.writeError(w, "AddMessage", err)
		return
	}

	booking, err := h.service.AddMessage(r.Context(), session, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "AddMessage", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "AddMessage", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) session(w http.ResponseWriter, r *http.Request, name string) (auth.Session, bool) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
	}
	return session, ok
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.guard.Required(h.Create))
	router.GET("/api/v1/bookings/my-bookings", h.guard.Required(h.ListMine))
	router.GET("/api/v1/bookings/id/:id", h.guard.Required(h.GetByID))
	router.PUT("/api/v1/bookings/id/:id/accept", h.guard.Required(h.Accept))
	router.PUT("/api/v1/bookings/id/:id/reject", h.guard.Required(h.Reject))
	router.PUT("/api/v1/bookings/id/:id/cancel", h.guard.Required(h.Cancel))
	router.POST("/api/v1/bookings/id/:id/messages", h.guard.Required(h.AddMessage))
}
