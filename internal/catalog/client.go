// Package catalog talks to the public meal catalog (TheMealDB) and turns
// its records into menu items.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/foodflame/storefront/internal/metrics"
)

// DefaultBaseURL is the public TheMealDB v1 endpoint.
const DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 15 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

// Meal is one record of a filter.php response.
type Meal struct {
	ID    string `json:"idMeal"`
	Name  string `json:"strMeal"`
	Thumb string `json:"strMealThumb"`
}

type filterResponse struct {
	Meals []Meal `json:"meals"`
}

// Catalog lists the meals of one catalog category.
type Catalog interface {
	MealsByCategory(ctx context.Context, category string) ([]Meal, error)
}

// StatusError is returned for non-2xx catalog responses.
type StatusError struct {
	Category   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog category %q: unexpected status %d", e.Category, e.StatusCode)
}

// NewHTTPClient creates an HTTP client configured for catalog requests.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Client is the HTTP implementation of Catalog.
type Client struct {
	baseURL string
	http    *http.Client
	metrics metrics.Recorder
}

// NewClient creates a Client. A nil httpClient uses NewHTTPClient().
func NewClient(baseURL string, httpClient *http.Client, recorder metrics.Recorder) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		metrics: recorder,
	}
}

// MealsByCategory issues GET {base}/filter.php?c={category}.
// A null meal list is returned as an empty slice.
func (c *Client) MealsByCategory(ctx context.Context, category string) (meals []Meal, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveCatalogRequest(category, time.Since(start), err)
	}()

	endpoint := c.baseURL + "/filter.php?c=" + url.QueryEscape(category)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FoodFlame-Storefront/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request %q: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Category: category, StatusCode: resp.StatusCode}
	}

	var body filterResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog category %q: %w", category, err)
	}

	if body.Meals == nil {
		return []Meal{}, nil
	}
	return body.Meals, nil
}
