// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Menu fetch sources.
const (
	FetchLive     = "live"
	FetchFallback = "fallback"
	FetchSkipped  = "skipped"
	FetchFailed   = "failed"
)

// Auth operations.
const (
	OpLogin         = "login"
	OpSignup        = "signup"
	OpLogout        = "logout"
	OpResetPassword = "reset_password"
	OpUpdateProfile = "update_profile"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Session metrics
	IncAuthOperation(op, status string)

	// Menu metrics
	IncMenuFetch(source string)
	SetMenuItems(n int)
	ObserveCatalogRequest(category string, duration time.Duration, err error)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
