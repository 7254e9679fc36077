package main

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodflame/storefront/internal/config"
	"github.com/foodflame/storefront/internal/menu"
	"github.com/foodflame/storefront/internal/metrics"
	"github.com/foodflame/storefront/internal/session"
	"github.com/foodflame/storefront/internal/storage"
	"github.com/foodflame/storefront/internal/testutil"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"user and password", "postgres://shop:s3cret@db:5432/foodflame", "postgres://shop@db:5432/foodflame"},
		{"password only", "redis://:s3cret@cache:6379", "redis://redacted@cache:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redactURL(tt.raw))
		})
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://shop:s3cret@db:5432/foodflame"
	err := errors.New("dial " + dsn + " failed: password=s3cret rejected")

	got := sanitizeError(err, dsn)

	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "postgres://shop@db:5432/foodflame")
	assert.Contains(t, got, "password=redacted")
	assert.Empty(t, sanitizeError(nil))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestSetupRouter_Wiring(t *testing.T) {
	cfg := &config.Config{
		AppEnv:               "development",
		RateLimitAuthEnabled: true,
		RateLimitAuthRPS:     5,
		RateLimitAuthBurst:   10,
		MaxRequestBodySize:   1 << 20,
		MenuMaxPages:         5,
	}
	logger := testutil.DiscardLogger()
	d := &deps{kv: storage.NewMemory(), recorder: metrics.NewPrometheus()}
	store := session.NewStore(session.Config{KV: d.kv, Logger: logger})
	provider := menu.NewProvider(menu.Config{Source: menuSource(cfg, d, logger), Logger: logger})
	provider.FetchInitial(t.Context())

	r := setupRouter(cfg, d, store, provider, logger)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/session", http.StatusOK},
		{http.MethodGet, "/api/v1/menu", http.StatusOK},
		{http.MethodGet, "/api/v1/menu/categories", http.StatusOK},
		{http.MethodGet, "/no/such/route", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/session", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSetupRouter_LoginIsRateLimited(t *testing.T) {
	cfg := &config.Config{
		RateLimitAuthEnabled: true,
		RateLimitAuthRPS:     1,
		RateLimitAuthBurst:   1,
		MaxRequestBodySize:   1 << 20,
	}
	logger := testutil.DiscardLogger()
	d := &deps{kv: storage.NewMemory(), recorder: metrics.NewPrometheus()}
	store := session.NewStore(session.Config{KV: d.kv, Logger: logger})
	provider := menu.NewProvider(menu.Config{Source: menu.StaticSource{}, Logger: logger})

	r := setupRouter(cfg, d, store, provider, logger)

	login := func() *httptest.ResponseRecorder {
		body := strings.NewReader(`{"email":"nobody@example.com","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := login()
	require.Equal(t, http.StatusUnauthorized, first.Code)

	second := login()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
