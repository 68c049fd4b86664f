package handler

import (
	"net/http"

	"locmaroc/internal/users/service"
	"locmaroc/pkg/auth"
	apperrors "locmaroc/pkg/errors"
	httputil "locmaroc/pkg/http"
	"locmaroc/pkg/logger"
	"locmaroc/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	guard   *auth.Guard
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, guard *auth.Guard, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		h.writeError(w, "Profile", apperrors.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.Profile(r.Context(), session)
	if err != nil {
		h.writeError(w, "Profile", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Profile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "UpdateProfile")
	if !ok {
		return
	}

	var update model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &update, false); err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), session, &update)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "ChangePassword")
	if !ok {
		return
	}

	var req model.ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), session, &req); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) session(w http.ResponseWriter, r *http.Request, name string) (auth.Session, bool) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		h.writeError(w, name, apperrors.Unauthorized("authentication required"))
	}
	return session, ok
}

func (h *UserHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.GET("/api/v1/auth/profile", h.guard.Required(h.Profile))
	router.PUT("/api/v1/users/profile", h.guard.Required(h.UpdateProfile))
	router.PUT("/api/v1/users/change-password", h.guard.Required(h.ChangePassword))
}
