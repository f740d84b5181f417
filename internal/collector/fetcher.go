package collector

import (
	"context"

	"PriceSniper/internal/model"
)

// Fetcher defines the interface for talking to the tracker API.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	TrackProduct(ctx context.Context, url string) (*model.Product, error)
	RefreshProduct(ctx context.Context, id int64) error
	RefreshAll(ctx context.Context) error
	DeleteProduct(ctx context.Context, id int64) error
	PriceHistory(ctx context.Context, id int64, days int) ([]model.PriceObservation, error)
	Analysis(ctx context.Context, id int64) (*model.Analysis, error)
	CreateAlert(ctx context.Context, req model.AlertRequest) (*model.Alert, error)
	ProductAlerts(ctx context.Context, id int64) ([]model.Alert, error)
	Name() string
}
