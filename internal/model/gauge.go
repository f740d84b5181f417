package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeWindow selects how much price history a chart shows.
type TimeWindow string

const (
	Window7D  TimeWindow = "7D"
	Window30D TimeWindow = "30D"
	Window3M  TimeWindow = "3M"
	Window1Y  TimeWindow = "1Y"
	// WindowAll shows the full history. Unrecognized windows behave like it.
	WindowAll TimeWindow = "ALL"
)

// Windows lists the selectable windows in display order.
var Windows = []TimeWindow{Window7D, Window30D, Window3M, Window1Y, WindowAll}

// BuyScoreResult is the gauge state. Degenerate means there is not enough
// history to tell a good price from a bad one; Score then holds the neutral
// midpoint rather than a graded value.
type BuyScoreResult struct {
	Score      float64 `json:"score"`
	Degenerate bool    `json:"degenerate"`
}

// Verdict is the qualitative label shown on the gauge.
type Verdict string

const (
	VerdictSkip     Verdict = "Skip"
	VerdictWait     Verdict = "Wait"
	VerdictOkay     Verdict = "Okay"
	VerdictBuy      Verdict = "Buy"
	VerdictTracking Verdict = "Tracking"
)

// ChartSummary describes the visible chart window.
type ChartSummary struct {
	Points     int     `json:"points"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	DomainLow  float64 `json:"domain_low"`
	DomainHigh float64 `json:"domain_high"`
}

// Card is the fully rendered view of one tracked product.
type Card struct {
	Product         Product             `json:"product"`
	Window          TimeWindow          `json:"window"`
	History         []PriceObservation  `json:"history"`
	Chart           ChartSummary        `json:"chart"`
	Band            PriceBand           `json:"band"`
	Gauge           BuyScoreResult      `json:"gauge"`
	Verdict         Verdict             `json:"verdict"`
	Discount        int64               `json:"discount"`
	PercentFromLow  *int64              `json:"percent_from_low,omitempty"`
	SuggestedTarget decimal.Decimal     `json:"suggested_target"`
	Recommendation  string              `json:"recommendation,omitempty"`
	IsFakeSale      bool                `json:"is_fake_sale"`
	Avg30Day        decimal.NullDecimal `json:"avg_30_day"`
}

// Dashboard is the landing view: header stats plus one card per product.
type Dashboard struct {
	Stats       Stats     `json:"stats"`
	Cards       []Card    `json:"cards"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Reading is a cached gauge snapshot for one product.
type Reading struct {
	ProductID  int64               `json:"product_id"`
	Name       string              `json:"name"`
	Price      decimal.Decimal     `json:"price"`
	Score      float64             `json:"score"`
	Degenerate bool                `json:"degenerate"`
	Verdict    Verdict             `json:"verdict"`
	Min        decimal.NullDecimal `json:"min"`
	Max        decimal.NullDecimal `json:"max"`
	RecordedAt time.Time           `json:"recorded_at"`
}
