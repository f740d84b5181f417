package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one historical price sample.
type PriceObservation struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

// PriceBand is the historical [min, max] price range. Either bound may be
// absent when there is not enough history. Callers must never build a band
// with Min > Max.
type PriceBand struct {
	Min decimal.NullDecimal `json:"min"`
	Max decimal.NullDecimal `json:"max"`
}

// NewPriceBand returns a band with both bounds present.
func NewPriceBand(min, max decimal.Decimal) PriceBand {
	return PriceBand{
		Min: decimal.NewNullDecimal(min),
		Max: decimal.NewNullDecimal(max),
	}
}

// Analysis is the tracker's 30-day price analysis for a product.
type Analysis struct {
	ProductID          int64               `json:"product_id"`
	ProductName        string              `json:"product_name"`
	CurrentPrice       decimal.Decimal     `json:"current_price"`
	Avg7Day            decimal.NullDecimal `json:"avg_7_day"`
	Avg30Day           decimal.NullDecimal `json:"avg_30_day"`
	Avg90Day           decimal.NullDecimal `json:"avg_90_day"`
	MinPrice30Day      decimal.NullDecimal `json:"min_price_30_day"`
	MaxPrice30Day      decimal.NullDecimal `json:"max_price_30_day"`
	IsFakeSale         bool                `json:"is_fake_sale"`
	FakeSaleConfidence float64             `json:"fake_sale_confidence"`
	RealDiscount       decimal.NullDecimal `json:"real_discount_percentage"`
	Recommendation     string              `json:"recommendation"`
}

// Band returns the 30-day band carried by the analysis.
func (a *Analysis) Band() PriceBand {
	return PriceBand{Min: a.MinPrice30Day, Max: a.MaxPrice30Day}
}
