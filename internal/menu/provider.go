package menu

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/foodflame/storefront/internal/metrics"
	"github.com/foodflame/storefront/internal/model"
)

// ErrUnknownCategory is returned by SetCategory for a name outside the
// category list.
var ErrUnknownCategory = errors.New("unknown category")

const (
	// DefaultMaxPages caps how far paging goes.
	DefaultMaxPages = 5
	// ScrollThreshold is the distance in pixels from the document bottom
	// at which the next page is requested.
	ScrollThreshold = 100
)

// ScrollPosition describes the viewport at a scroll event.
type ScrollPosition struct {
	ScrollTop      float64 `json:"scroll_top"`
	ViewportHeight float64 `json:"viewport_height"`
	DocumentHeight float64 `json:"document_height"`
}

// NearBottom reports whether the viewport bottom is within threshold of
// the document end.
func (p ScrollPosition) NearBottom(threshold float64) bool {
	return p.ScrollTop+p.ViewportHeight >= p.DocumentHeight-threshold
}

// State is a snapshot of the provider.
type State struct {
	Items      []model.FoodItem `json:"items"`
	Filtered   []model.FoodItem `json:"filtered"`
	SearchTerm string           `json:"search_term"`
	Category   model.Category   `json:"category"`
	Page       int              `json:"page"`
	HasMore    bool             `json:"has_more"`
	Loading    bool             `json:"loading"`
}

// Config configures a Provider.
type Config struct {
	Source   Source
	MaxPages int
	Logger   *slog.Logger
	Metrics  metrics.Recorder
}

// Provider owns the menu list, its paging cursor and the filter
// predicates. It is safe for concurrent use.
type Provider struct {
	source   Source
	maxPages int
	logger   *slog.Logger
	metrics  metrics.Recorder

	mu       sync.RWMutex
	items    []model.FoodItem
	term     string
	category model.Category
	page     int
	hasMore  bool
	// generation changes on every FetchInitial so that a page fetched for
	// an older list is dropped.
	generation uint64

	loadingMore atomic.Bool
	refreshing  atomic.Bool
}

// NewProvider creates a Provider with an empty list.
func NewProvider(cfg Config) *Provider {
	if cfg.Source == nil {
		cfg.Source = StaticSource{}
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return &Provider{
		source:   cfg.Source,
		maxPages: cfg.MaxPages,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		items:    []model.FoodItem{},
		category: model.CategoryAll,
	}
}

// FetchInitial replaces the list with page 1. A failed fetch is logged and
// the fallback list is used instead, so the result is never empty.
func (p *Provider) FetchInitial(ctx context.Context) []model.FoodItem {
	p.refreshing.Store(true)
	defer p.refreshing.Store(false)

	items, err := p.source.Fetch(ctx, 1)
	live := err == nil && len(items) > 0
	if !live {
		if err != nil {
			p.logger.Warn("menu fetch failed, using fallback list",
				slog.Int("page", 1),
				slog.String("error", err.Error()),
			)
		} else {
			p.logger.Warn("menu fetch returned no items, using fallback list")
		}
		items = Fallback()
		p.metrics.IncMenuFetch(metrics.FetchFallback)
	} else {
		p.metrics.IncMenuFetch(metrics.FetchLive)
	}

	p.mu.Lock()
	p.generation++
	p.items = items
	p.page = 1
	p.hasMore = live && p.page < p.maxPages
	count := len(p.items)
	out := cloneItems(p.items)
	p.mu.Unlock()

	p.metrics.SetMenuItems(count)
	p.logger.Info("menu loaded", slog.Int("items", count), slog.Bool("live", live))
	return out
}

// FetchMore appends page to the list and returns how many items were
// added. Nothing is requested while another page is loading, when no more
// pages are expected, when page is past the page cap, or when page is not
// the one right after the last loaded page.
func (p *Provider) FetchMore(ctx context.Context, page int) int {
	n, _ := p.fetchMore(ctx, func(int) int { return page })
	return n
}

// LoadMore fetches the page after the current one.
func (p *Provider) LoadMore(ctx context.Context) int {
	n, _ := p.fetchMore(ctx, func(current int) int { return current + 1 })
	return n
}

// fetchMore reports whether a request was issued. pageFor maps the
// current page to the page to load and runs after the in-flight flag is
// taken, so two callers never request the same page.
func (p *Provider) fetchMore(ctx context.Context, pageFor func(current int) int) (int, bool) {
	if !p.loadingMore.CompareAndSwap(false, true) {
		p.metrics.IncMenuFetch(metrics.FetchSkipped)
		return 0, false
	}
	defer p.loadingMore.Store(false)

	p.mu.Lock()
	page := pageFor(p.page)
	if !p.hasMore || page < 1 {
		p.mu.Unlock()
		p.metrics.IncMenuFetch(metrics.FetchSkipped)
		return 0, false
	}
	if page > p.maxPages {
		p.hasMore = false
		p.mu.Unlock()
		p.metrics.IncMenuFetch(metrics.FetchSkipped)
		return 0, false
	}
	// Pages are loaded in order: earlier pages are already in the list and
	// a skipped page would leave a gap.
	if page != p.page+1 {
		current := p.page
		p.mu.Unlock()
		p.logger.Debug("ignoring out-of-order page", slog.Int("page", page), slog.Int("current", current))
		p.metrics.IncMenuFetch(metrics.FetchSkipped)
		return 0, false
	}
	gen := p.generation
	p.mu.Unlock()

	items, err := p.source.Fetch(ctx, page)
	if err != nil {
		p.logger.Warn("menu page fetch failed",
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		p.metrics.IncMenuFetch(metrics.FetchFailed)
		p.mu.Lock()
		if gen == p.generation {
			p.hasMore = false
		}
		p.mu.Unlock()
		return 0, true
	}

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug("dropping page fetched for a replaced menu", slog.Int("page", page))
		return 0, true
	}
	p.items = append(p.items, items...)
	p.page = page
	if len(items) == 0 || page >= p.maxPages {
		p.hasMore = false
	}
	count := len(p.items)
	p.mu.Unlock()

	p.metrics.IncMenuFetch(metrics.FetchLive)
	p.metrics.SetMenuItems(count)
	p.logger.Debug("menu page loaded", slog.Int("page", page), slog.Int("added", len(items)))
	return len(items), true
}

// OnScroll requests the next page when the viewport is near the bottom,
// nothing is loading and more pages are expected. It reports whether a
// request was issued.
func (p *Provider) OnScroll(ctx context.Context, pos ScrollPosition) bool {
	if !pos.NearBottom(ScrollThreshold) {
		return false
	}
	if p.loadingMore.Load() || !p.HasMore() {
		return false
	}
	_, issued := p.fetchMore(ctx, func(current int) int { return current + 1 })
	return issued
}

// SetSearchTerm sets the free-text predicate.
func (p *Provider) SetSearchTerm(term string) {
	p.mu.Lock()
	p.term = term
	p.mu.Unlock()
}

// SetCategory sets the category predicate by name, ignoring case.
func (p *Provider) SetCategory(name string) error {
	c, ok := model.ParseCategory(name)
	if !ok {
		return ErrUnknownCategory
	}
	p.mu.Lock()
	p.category = c
	p.mu.Unlock()
	return nil
}

// Filtered returns the items matching both predicates.
func (p *Provider) Filtered() []model.FoodItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Filter(p.items, p.category, p.term)
}

// Items returns a copy of the full list.
func (p *Provider) Items() []model.FoodItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneItems(p.items)
}

// HasMore reports whether another page is expected.
func (p *Provider) HasMore() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hasMore
}

// State returns a snapshot of the provider.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{
		Items:      cloneItems(p.items),
		Filtered:   Filter(p.items, p.category, p.term),
		SearchTerm: p.term,
		Category:   p.category,
		Page:       p.page,
		HasMore:    p.hasMore,
		Loading:    p.loadingMore.Load() || p.refreshing.Load(),
	}
}

func cloneItems(items []model.FoodItem) []model.FoodItem {
	out := make([]model.FoodItem, len(items))
	copy(out, items)
	return out
}
