// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	"github.com/foodflame/storefront/internal/handler/dto"
	"github.com/foodflame/storefront/internal/notify"
)

// Version is reported by the info endpoint.
const Version = "1.0.0"

// Handler serves the endpoints that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Info describes the service.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "FoodFlame Storefront",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response along with any notifications raised
// while serving the request.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:         message,
		Code:          code,
		Notifications: collected(r),
	})
}

// collected returns the request's notifications, never nil.
func collected(r *http.Request) []notify.Notification {
	if c := notify.CollectorFromContext(r.Context()); c != nil {
		if n := c.Notifications(); n != nil {
			return n
		}
	}
	return []notify.Notification{}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errEmptyBody = errors.New("empty body")

// decodeAndValidate reads a JSON body into dst and validates it. When
// optional is set an empty body leaves dst untouched. It writes the error
// response itself and reports whether the caller may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any, optional bool) bool {
	if err := decodeJSON(r, dst); err != nil {
		if errors.Is(err, errEmptyBody) && optional {
			return true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}

	if err := v.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", dto.ValidationMessage(err))
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}
