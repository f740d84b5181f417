package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform is the e-commerce site a product is tracked on.
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMyntra   Platform = "myntra"
	PlatformUnknown  Platform = "unknown"
)

// Product mirrors a tracked product record from the tracker API.
type Product struct {
	ID           int64           `json:"id"`
	URL          string          `json:"url"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Currency     string          `json:"currency"`
	Platform     Platform        `json:"platform"`
	IsAvailable  bool            `json:"is_available"`
	ImageURL     string          `json:"image_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Stats is the dashboard header: how many items, how many in stock, total value.
type Stats struct {
	Tracked    int             `json:"tracked"`
	InStock    int             `json:"in_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}
