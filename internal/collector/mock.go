package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PriceSniper/internal/model"
)

// MockFetcher is an in-memory tracker for development and testing.
type MockFetcher struct {
	mu sync.Mutex

	Products map[int64]model.Product
	History  map[int64][]model.PriceObservation
	Analyses map[int64]*model.Analysis
	Alerts   map[int64][]model.Alert

	// Err fails every call; the others fail a single endpoint.
	Err         error
	HistoryErr  error
	AnalysisErr error

	Refreshed    []int64
	RefreshedAll int
	LastDays     int
	nextID       int64
}

// NewMockFetcher returns an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Products: make(map[int64]model.Product),
		History:  make(map[int64][]model.PriceObservation),
		Analyses: make(map[int64]*model.Analysis),
		Alerts:   make(map[int64][]model.Alert),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

// AddProduct registers p, keeping its ID.
func (m *MockFetcher) AddProduct(p model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Products[p.ID] = p
	if p.ID > m.nextID {
		m.nextID = p.ID
	}
}

func (m *MockFetcher) notFound(what string, id int64) error {
	return &StatusError{Method: "GET", Path: fmt.Sprintf("/%s/%d", what, id), Code: 404, Body: `{"detail":"Product not found"}`}
}

func (m *MockFetcher) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.Product, 0, len(m.Products))
	for _, p := range m.Products {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockFetcher) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, m.notFound("products", id)
	}
	return &p, nil
}

func (m *MockFetcher) TrackProduct(_ context.Context, url string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Products {
		if p.URL == url {
			return &p, nil
		}
	}
	m.nextID++
	now := time.Now().UTC()
	p := model.Product{
		ID: m.nextID, URL: url, Name: url, Platform: model.PlatformUnknown,
		IsAvailable: true, CreatedAt: now, UpdatedAt: now,
	}
	m.Products[p.ID] = p
	return &p, nil
}

func (m *MockFetcher) RefreshProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Products[id]; !ok {
		return m.notFound("products", id)
	}
	m.Refreshed = append(m.Refreshed, id)
	return nil
}

func (m *MockFetcher) RefreshAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.RefreshedAll++
	return nil
}

func (m *MockFetcher) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Products[id]; !ok {
		return m.notFound("products", id)
	}
	delete(m.Products, id)
	delete(m.History, id)
	delete(m.Analyses, id)
	delete(m.Alerts, id)
	return nil
}

func (m *MockFetcher) PriceHistory(_ context.Context, id int64, days int) ([]model.PriceObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	m.LastDays = days
	return append([]model.PriceObservation(nil), m.History[id]...), nil
}

func (m *MockFetcher) Analysis(_ context.Context, id int64) (*model.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.AnalysisErr != nil {
		return nil, m.AnalysisErr
	}
	a, ok := m.Analyses[id]
	if !ok {
		return nil, m.notFound("analytics", id)
	}
	return a, nil
}

func (m *MockFetcher) CreateAlert(_ context.Context, req model.AlertRequest) (*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.Products[req.ProductID]; !ok {
		return nil, m.notFound("products", req.ProductID)
	}
	a := model.Alert{
		ID:            int64(len(m.Alerts[req.ProductID]) + 1),
		ProductID:     req.ProductID,
		TargetPrice:   req.TargetPrice,
		ContactMethod: req.ContactMethod,
		ContactValue:  req.ContactValue,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	m.Alerts[req.ProductID] = append(m.Alerts[req.ProductID], a)
	return &a, nil
}

func (m *MockFetcher) ProductAlerts(_ context.Context, id int64) ([]model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.Alert(nil), m.Alerts[id]...), nil
}
