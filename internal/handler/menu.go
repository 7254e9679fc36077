package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/foodflame/storefront/internal/handler/dto"
	"github.com/foodflame/storefront/internal/menu"
	"github.com/foodflame/storefront/internal/model"
)

// MenuService is the part of the menu provider the API uses.
type MenuService interface {
	FetchInitial(ctx context.Context) []model.FoodItem
	FetchMore(ctx context.Context, page int) int
	LoadMore(ctx context.Context) int
	SetSearchTerm(term string)
	SetCategory(name string) error
	OnScroll(ctx context.Context, pos menu.ScrollPosition) bool
	State() menu.State
}

// MenuHandler handles menu requests.
type MenuHandler struct {
	menu     MenuService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(m MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		menu:     m,
		logger:   logger,
		validate: newValidator(),
	}
}

// Get handles GET /api/v1/menu. The search and category query parameters,
// when present, replace the current predicates first.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Has("category") {
		if err := h.menu.SetCategory(query.Get("category")); err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}
	if query.Has("search") {
		h.menu.SetSearchTerm(query.Get("search"))
	}

	writeJSON(w, http.StatusOK, h.menu.State())
}

// Categories handles GET /api/v1/menu/categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := make([]model.Category, len(model.Categories))
	copy(cats, model.Categories)
	writeJSON(w, http.StatusOK, dto.CategoriesResponse{Categories: cats})
}

// Refresh handles POST /api/v1/menu/refresh.
func (h *MenuHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.menu.FetchInitial(r.Context())
	writeJSON(w, http.StatusOK, h.menu.State())
}

// More handles POST /api/v1/menu/more. Without a page the next page is
// loaded.
func (h *MenuHandler) More(w http.ResponseWriter, r *http.Request) {
	var req dto.FetchMoreRequest
	if !decodeAndValidate(w, r, h.validate, &req, true) {
		return
	}

	var added int
	if req.Page != nil {
		added = h.menu.FetchMore(r.Context(), *req.Page)
	} else {
		added = h.menu.LoadMore(r.Context())
	}

	writeJSON(w, http.StatusOK, dto.FetchMoreResponse{Added: added, State: h.menu.State()})
}

// Filter handles PUT /api/v1/menu/filter.
func (h *MenuHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req dto.MenuFilterRequest
	if !decodeAndValidate(w, r, h.validate, &req, false) {
		return
	}

	if req.Category != nil {
		if err := h.menu.SetCategory(*req.Category); err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}
	if req.Search != nil {
		h.menu.SetSearchTerm(*req.Search)
	}

	writeJSON(w, http.StatusOK, h.menu.State())
}

// Scroll handles POST /api/v1/menu/scroll.
func (h *MenuHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req dto.ScrollRequest
	if !decodeAndValidate(w, r, h.validate, &req, false) {
		return
	}

	triggered := h.menu.OnScroll(r.Context(), req.Position())
	writeJSON(w, http.StatusOK, dto.ScrollResponse{Triggered: triggered, State: h.menu.State()})
}

// handleServiceError maps menu errors to HTTP responses.
func (h *MenuHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, menu.ErrUnknownCategory):
		writeError(w, r, http.StatusBadRequest, "UNKNOWN_CATEGORY", "Unknown category")
	default:
		h.logger.Error("internal_error", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
