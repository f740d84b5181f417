package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"PriceSniper/internal/model"
)

// StatusError is returned when the tracker answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d, body: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from the tracker.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// APIFetcher implements Fetcher using the tracker REST API.
type APIFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAPIFetcher creates a new fetcher with optional proxy support.
func NewAPIFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *APIFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &APIFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *APIFetcher) Name() string { return "tracker-api" }

// apiProduct is the product JSON shape; the tracker emits naive ISO timestamps.
type apiProduct struct {
	ID           int64           `json:"id"`
	URL          string          `json:"url"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Currency     string          `json:"currency"`
	Platform     string          `json:"platform"`
	IsAvailable  bool            `json:"is_available"`
	ImageURL     *string         `json:"image_url"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

// apiPoint is one trend point. Older tracker builds name the timestamp scraped_at.
type apiPoint struct {
	Date      string          `json:"date"`
	ScrapedAt string          `json:"scraped_at"`
	Price     decimal.Decimal `json:"price"`
}

type apiAlert struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	ContactMethod string          `json:"contact_method"`
	ContactValue  string          `json:"contact_value"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     string          `json:"created_at"`
	TriggeredAt   *string         `json:"triggered_at"`
}

func (f *APIFetcher) ListProducts(ctx context.Context) ([]model.Product, error) {
	var raw []apiProduct
	if err := f.do(ctx, http.MethodGet, "/products/", nil, &raw); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]model.Product, 0, len(raw))
	for _, rp := range raw {
		p, err := rp.toModel()
		if err != nil {
			return nil, fmt.Errorf("list products: product %d: %w", rp.ID, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (f *APIFetcher) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var raw apiProduct
	if err := f.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	p, err := raw.toModel()
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (f *APIFetcher) TrackProduct(ctx context.Context, productURL string) (*model.Product, error) {
	var raw apiProduct
	payload := map[string]string{"url": productURL}
	if err := f.do(ctx, http.MethodPost, "/products/track", payload, &raw); err != nil {
		return nil, fmt.Errorf("track product: %w", err)
	}
	p, err := raw.toModel()
	if err != nil {
		return nil, fmt.Errorf("track product: %w", err)
	}
	return &p, nil
}

func (f *APIFetcher) RefreshProduct(ctx context.Context, id int64) error {
	if err := f.do(ctx, http.MethodPost, fmt.Sprintf("/products/%d/refresh", id), nil, nil); err != nil {
		return fmt.Errorf("refresh product %d: %w", id, err)
	}
	return nil
}

func (f *APIFetcher) RefreshAll(ctx context.Context) error {
	if err := f.do(ctx, http.MethodPost, "/products/refresh-all", nil, nil); err != nil {
		return fmt.Errorf("refresh all: %w", err)
	}
	return nil
}

func (f *APIFetcher) DeleteProduct(ctx context.Context, id int64) error {
	if err := f.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// PriceHistory returns up to days of history. The tracker answers 404 when a
// product has no samples yet; that is reported as an empty history.
func (f *APIFetcher) PriceHistory(ctx context.Context, id int64, days int) ([]model.PriceObservation, error) {
	var raw []apiPoint
	path := fmt.Sprintf("/analytics/%d/trend?days=%d", id, days)
	if err := f.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		if IsNotFound(err) {
			return []model.PriceObservation{}, nil
		}
		return nil, fmt.Errorf("price history %d: %w", id, err)
	}
	out := make([]model.PriceObservation, 0, len(raw))
	for _, p := range raw {
		stamp := p.Date
		if stamp == "" {
			stamp = p.ScrapedAt
		}
		ts, err := parseTimestamp(stamp)
		if err != nil {
			return nil, fmt.Errorf("price history %d: %w", id, err)
		}
		out = append(out, model.PriceObservation{Timestamp: ts, Price: p.Price})
	}
	return out, nil
}

func (f *APIFetcher) Analysis(ctx context.Context, id int64) (*model.Analysis, error) {
	var a model.Analysis
	if err := f.do(ctx, http.MethodGet, fmt.Sprintf("/analytics/%d/analysis", id), nil, &a); err != nil {
		return nil, fmt.Errorf("analysis %d: %w", id, err)
	}
	return &a, nil
}

func (f *APIFetcher) CreateAlert(ctx context.Context, req model.AlertRequest) (*model.Alert, error) {
	var raw apiAlert
	if err := f.do(ctx, http.MethodPost, "/alerts/", req, &raw); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	a, err := raw.toModel()
	if err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	return &a, nil
}

func (f *APIFetcher) ProductAlerts(ctx context.Context, id int64) ([]model.Alert, error) {
	var raw []apiAlert
	if err := f.do(ctx, http.MethodGet, fmt.Sprintf("/alerts/product/%d", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("product alerts %d: %w", id, err)
	}
	alerts := make([]model.Alert, 0, len(raw))
	for _, ra := range raw {
		a, err := ra.toModel()
		if err != nil {
			return nil, fmt.Errorf("product alerts %d: %w", id, err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// do sends one request. A nil out discards the response body.
func (f *APIFetcher) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, f.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (p apiProduct) toModel() (model.Product, error) {
	created, err := parseTimestamp(p.CreatedAt)
	if err != nil {
		return model.Product{}, err
	}
	updated, err := parseTimestamp(p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}
	platform := model.Platform(strings.ToLower(p.Platform))
	if platform == "" {
		platform = model.PlatformUnknown
	}
	product := model.Product{
		ID:           p.ID,
		URL:          p.URL,
		Name:         p.Name,
		CurrentPrice: p.CurrentPrice,
		Currency:     p.Currency,
		Platform:     platform,
		IsAvailable:  p.IsAvailable,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	return product, nil
}

func (a apiAlert) toModel() (model.Alert, error) {
	created, err := parseTimestamp(a.CreatedAt)
	if err != nil {
		return model.Alert{}, err
	}
	alert := model.Alert{
		ID:            a.ID,
		ProductID:     a.ProductID,
		TargetPrice:   a.TargetPrice,
		ContactMethod: a.ContactMethod,
		ContactValue:  a.ContactValue,
		IsActive:      a.IsActive,
		CreatedAt:     created,
	}
	if a.TriggeredAt != nil && *a.TriggeredAt != "" {
		ts, err := parseTimestamp(*a.TriggeredAt)
		if err != nil {
			return model.Alert{}, err
		}
		alert.TriggeredAt = &ts
	}
	return alert, nil
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 and the tracker's zone-less ISO format,
// which is UTC.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}
