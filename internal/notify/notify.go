// Package notify carries short user-facing messages produced by domain
// operations, the server-side counterpart of a front-end toast.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Variant classifies a notification for display.
type Variant string

// Notification variants.
const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a single message for the end user.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Info builds a default notification.
func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

// Error builds a destructive notification.
func Error(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

// Notifier receives notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Collector accumulates notifications for one request.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Notifications returns a copy of everything collected so far.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.items...)
}

type contextKey string

const collectorKey contextKey = "notify_collector"

// WithCollector returns a context carrying a fresh Collector.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey, c), c
}

// CollectorFromContext returns the request's collector, or nil.
func CollectorFromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey).(*Collector)
	return c
}

// Dispatcher logs every notification and forwards it to the collector
// attached to the context, if any.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger uses slog.Default().
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Notify logs n and hands it to the context collector.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	d.logger.Log(ctx, level, "notification", slog.String("title", n.Title))

	if c := CollectorFromContext(ctx); c != nil {
		c.Notify(ctx, n)
	}
}
