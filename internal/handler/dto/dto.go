// Package dto defines the JSON request and response bodies of the API.
package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/foodflame/storefront/internal/menu"
	"github.com/foodflame/storefront/internal/model"
	"github.com/foodflame/storefront/internal/notify"
)

// SignupRequest is the body of POST /api/v1/auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// ResetPasswordRequest is the body of POST /api/v1/auth/reset-password.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// UpdateProfileRequest is the body of PATCH /api/v1/profile. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Email     *string          `json:"email" validate:"omitempty,email,max=254"`
	Password  *string          `json:"password" validate:"omitempty,min=1,max=256"`
	Addresses *[]model.Address `json:"addresses"`
	Orders    *[]model.Order   `json:"orders"`
}

// ToProfileUpdate converts the request into the store's update type.
func (r UpdateProfileRequest) ToProfileUpdate() model.ProfileUpdate {
	return model.ProfileUpdate{
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Addresses: r.Addresses,
		Orders:    r.Orders,
	}
}

// MenuFilterRequest is the body of PUT /api/v1/menu/filter.
type MenuFilterRequest struct {
	Search   *string `json:"search" validate:"omitempty,max=100"`
	Category *string `json:"category" validate:"omitempty,max=32"`
}

// FetchMoreRequest is the optional body of POST /api/v1/menu/more.
type FetchMoreRequest struct {
	Page *int `json:"page" validate:"omitempty,min=1"`
}

// ScrollRequest is the body of POST /api/v1/menu/scroll.
type ScrollRequest struct {
	ScrollTop      float64 `json:"scroll_top" validate:"min=0"`
	ViewportHeight float64 `json:"viewport_height" validate:"min=0"`
	DocumentHeight float64 `json:"document_height" validate:"min=0"`
}

// Position converts the request into a menu scroll position.
func (r ScrollRequest) Position() menu.ScrollPosition {
	return menu.ScrollPosition{
		ScrollTop:      r.ScrollTop,
		ViewportHeight: r.ViewportHeight,
		DocumentHeight: r.DocumentHeight,
	}
}

// UserResponse is a user without the password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Addresses []model.Address `json:"addresses"`
	Orders    []model.Order   `json:"orders"`
}

// ToUserResponse converts a user. A nil user gives nil.
func ToUserResponse(u *model.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Addresses: u.Addresses,
		Orders:    u.Orders,
	}
}

// SessionResponse is returned by the auth, session and profile endpoints.
type SessionResponse struct {
	User          *UserResponse         `json:"user"`
	Notifications []notify.Notification `json:"notifications"`
}

// ResetPasswordResponse carries the generated temporary password.
type ResetPasswordResponse struct {
	TempPassword  string                `json:"temp_password"`
	Notifications []notify.Notification `json:"notifications"`
}

// CategoriesResponse lists the menu filter values.
type CategoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

// FetchMoreResponse reports how many items a page added.
type FetchMoreResponse struct {
	Added int        `json:"added"`
	State menu.State `json:"state"`
}

// ScrollResponse reports whether the scroll event requested a page.
type ScrollResponse struct {
	Triggered bool       `json:"triggered"`
	State     menu.State `json:"state"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error         string                `json:"error"`
	Code          string                `json:"code"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// ValidationMessage renders validator errors as one readable message.
func ValidationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request"
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", field))
		}
	}
	return strings.Join(msgs, ", ")
}
