package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodflame/storefront/internal/auth"
	"github.com/foodflame/storefront/internal/handler/dto"
	"github.com/foodflame/storefront/internal/middleware"
	"github.com/foodflame/storefront/internal/notify"
	"github.com/foodflame/storefront/internal/session"
	"github.com/foodflame/storefront/internal/storage"
	"github.com/foodflame/storefront/internal/testutil"
)

func newSessionRouter(t *testing.T) (http.Handler, *session.Store) {
	t.Helper()

	logger := testutil.DiscardLogger()
	store := session.NewStore(session.Config{
		KV:     storage.NewMemory(),
		Hasher: auth.NewArgon2Hasher(auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}),
		Logger: logger,
	})
	h := NewSessionHandler(store, logger)

	r := chi.NewRouter()
	r.Use(middleware.Notifications)
	r.Post("/api/v1/auth/signup", h.Signup)
	r.Post("/api/v1/auth/login", h.Login)
	r.Post("/api/v1/auth/logout", h.Logout)
	r.Post("/api/v1/auth/reset-password", h.ResetPassword)
	r.Get("/api/v1/session", h.Session)
	r.Patch("/api/v1/profile", h.UpdateProfile)
	return r, store
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) dto.SessionResponse {
	t.Helper()
	var resp dto.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

const janeSignup = `{"email":"jane@example.com","password":"pizza123","name":"Jane"}`

func TestSessionHandler_Signup(t *testing.T) {
	r, store := newSessionRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "argon2id")

	resp := decodeSession(t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "Jane", resp.User.Name)
	assert.NotNil(t, resp.User.Addresses)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "Account created!", resp.Notifications[0].Title)
	assert.Equal(t, "Welcome to FoodFlame, Jane!", resp.Notifications[0].Description)

	require.NotNil(t, store.Current())
}

func TestSessionHandler_SignupDuplicate(t *testing.T) {
	r, _ := newSessionRouter(t)

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup).Code)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "EMAIL_EXISTS", resp.Code)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, notify.VariantDestructive, resp.Notifications[0].Variant)
}

func TestSessionHandler_SignupValidation(t *testing.T) {
	r, _ := newSessionRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
		contains string
	}{
		{"malformed json", `{"email":`, "INVALID_JSON", ""},
		{"unknown field", `{"email":"a@b.co","password":"x","name":"A","admin":true}`, "INVALID_JSON", ""},
		{"missing name", `{"email":"a@b.co","password":"x"}`, "VALIDATION_ERROR", "field name is required"},
		{"bad email", `{"email":"not-an-email","password":"x","name":"A"}`, "VALIDATION_ERROR", "field email must be a valid email address"},
		{"empty body", ``, "INVALID_JSON", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.contains != "" {
				assert.Contains(t, resp.Error, tt.contains)
			}
		})
	}
}

func TestSessionHandler_Login(t *testing.T) {
	r, _ := newSessionRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", "").Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"correct", `{"email":"jane@example.com","password":"pizza123"}`, http.StatusOK},
		{"wrong password", `{"email":"jane@example.com","password":"burger"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"joe@example.com","password":"pizza123"}`, http.StatusUnauthorized},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if rec.Code != http.StatusOK {
				bodies = append(bodies, rec.Body.String())
			}
		})
	}

	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "login failures are indistinguishable")
	assert.Contains(t, bodies[0], "Invalid email or password")
}

func TestSessionHandler_SessionAndLogout(t *testing.T) {
	r, _ := newSessionRouter(t)

	resp := decodeSession(t, doJSON(t, r, http.MethodGet, "/api/v1/session", ""))
	assert.Nil(t, resp.User)
	assert.NotNil(t, resp.Notifications)

	doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup)
	resp = decodeSession(t, doJSON(t, r, http.MethodGet, "/api/v1/session", ""))
	require.NotNil(t, resp.User)
	assert.Equal(t, "Jane", resp.User.Name)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeSession(t, rec)
	assert.Nil(t, resp.User)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "Logged out", resp.Notifications[0].Title)

	resp = decodeSession(t, doJSON(t, r, http.MethodGet, "/api/v1/session", ""))
	assert.Nil(t, resp.User)
}

func TestSessionHandler_ResetPassword(t *testing.T) {
	r, _ := newSessionRouter(t)
	doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/auth/reset-password", `{"email":"jane@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ResetPasswordResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, auth.IsTempPassword(resp.TempPassword), "got %q", resp.TempPassword)
	require.Len(t, resp.Notifications, 1)
	assert.True(t, strings.HasSuffix(resp.Notifications[0].Description, resp.TempPassword))

	login := `{"email":"jane@example.com","password":"` + resp.TempPassword + `"}`
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/auth/login", login).Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/auth/reset-password", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_NOT_FOUND")
}

func TestSessionHandler_UpdateProfile(t *testing.T) {
	r, _ := newSessionRouter(t)

	// no session: nothing happens
	rec := doJSON(t, r, http.MethodPatch, "/api/v1/profile", `{"name":"Ghost"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeSession(t, rec).User)

	doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", janeSignup)
	doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", `{"email":"joe@example.com","password":"x","name":"Joe"}`)
	doJSON(t, r, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"pizza123"}`)

	body := `{"name":"Jane Doe","addresses":[{"id":"a1","label":"Home","street":"1 Main St","city":"Springfield","postal_code":"12345","is_default":true}]}`
	rec = doJSON(t, r, http.MethodPatch, "/api/v1/profile", body)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Jane Doe", resp.User.Name)
	require.Len(t, resp.User.Addresses, 1)
	assert.Equal(t, "Springfield", resp.User.Addresses[0].City)

	rec = doJSON(t, r, http.MethodPatch, "/api/v1/profile", `{"email":"joe@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPatch, "/api/v1/profile", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the session survives a logout and login with the merged fields
	doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", "")
	rec = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"pizza123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", decodeSession(t, rec).User.Name)
}
