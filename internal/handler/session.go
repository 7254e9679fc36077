package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/foodflame/storefront/internal/handler/dto"
	"github.com/foodflame/storefront/internal/model"
	"github.com/foodflame/storefront/internal/session"
)

// SessionService is the part of the session store the API uses.
type SessionService interface {
	Current() *model.User
	Login(ctx context.Context, email, password string) (*model.User, error)
	Signup(ctx context.Context, email, password, name string) (*model.User, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) (string, error)
	UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.User, error)
}

// SessionHandler handles authentication, session and profile requests.
type SessionHandler struct {
	store    SessionService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(store SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:    store,
		logger:   logger,
		validate: newValidator(),
	}
}

// Signup handles POST /api/v1/auth/signup.
func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeAndValidate(w, r, h.validate, &req, false) {
		return
	}

	user, err := h.store.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.sessionResponse(r, user))
}

// Login handles POST /api/v1/auth/login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req, false) {
		return
	}

	user, err := h.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.sessionResponse(r, user))
}

// Logout handles POST /api/v1/auth/logout.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.sessionResponse(r, nil))
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *SessionHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeAndValidate(w, r, h.validate, &req, false) {
		return
	}

	temp, err := h.store.ResetPassword(r.Context(), req.Email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ResetPasswordResponse{
		TempPassword:  temp,
		Notifications: collected(r),
	})
}

// Session handles GET /api/v1/session. The user is null when nobody is
// logged in.
func (h *SessionHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionResponse(r, h.store.Current()))
}

// UpdateProfile handles PATCH /api/v1/profile. Without an active session
// nothing changes and the user is null.
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req, false) {
		return
	}

	user, err := h.store.UpdateProfile(r.Context(), req.ToProfileUpdate())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if user != nil {
		h.logger.Info("profile_updated", slog.String("user_id", user.ID))
	}

	writeJSON(w, http.StatusOK, h.sessionResponse(r, user))
}

func (h *SessionHandler) sessionResponse(r *http.Request, user *model.User) dto.SessionResponse {
	return dto.SessionResponse{
		User:          dto.ToUserResponse(user),
		Notifications: collected(r),
	}
}

// handleServiceError maps session errors to HTTP responses.
func (h *SessionHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, session.ErrEmailExists):
		writeError(w, r, http.StatusConflict, "EMAIL_EXISTS", "An account with this email already exists")
	case errors.Is(err, session.ErrEmailNotFound):
		writeError(w, r, http.StatusNotFound, "EMAIL_NOT_FOUND", "No account found with this email address")
	default:
		h.logger.Error("internal_error", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
