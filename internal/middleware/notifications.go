package middleware

import (
	"net/http"

	"github.com/foodflame/storefront/internal/notify"
)

// Notifications gives every request its own notification collector so
// handlers can return the toasts raised while serving it.
func Notifications(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := notify.WithCollector(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
