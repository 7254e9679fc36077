package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAuthOperation is a no-op.
func (n *NoopRecorder) IncAuthOperation(op, status string) {}

// IncMenuFetch is a no-op.
func (n *NoopRecorder) IncMenuFetch(source string) {}

// SetMenuItems is a no-op.
func (n *NoopRecorder) SetMenuItems(count int) {}

// ObserveCatalogRequest is a no-op.
func (n *NoopRecorder) ObserveCatalogRequest(category string, duration time.Duration, err error) {}
