package calculator

import (
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"PriceSniper/internal/model"
)

// chartPadding widens the chart's price axis so flat series don't look dramatic.
const chartPadding = 0.1

// BandFromHistory scans the last 30 days of observations and returns the
// low and high. Both bounds are absent when the window holds no samples.
func BandFromHistory(obs []model.PriceObservation, now time.Time) model.PriceBand {
	recent := FilterRange(obs, model.Window30D, now)
	if len(recent) == 0 {
		return model.PriceBand{}
	}
	lo, hi := recent[0].Price, recent[0].Price
	for _, o := range recent[1:] {
		lo = decimal.Min(lo, o.Price)
		hi = decimal.Max(hi, o.Price)
	}
	return model.NewPriceBand(lo, hi)
}

// Summarize computes the chart header figures and a padded price axis for
// an already-filtered window. Empty input yields the zero summary.
func Summarize(obs []model.PriceObservation) model.ChartSummary {
	if len(obs) == 0 {
		return model.ChartSummary{}
	}
	prices := make([]float64, len(obs))
	for i, o := range obs {
		prices[i] = o.Price.InexactFloat64()
	}
	lo, hi := floats.Min(prices), floats.Max(prices)
	pad := (hi - lo) * chartPadding
	return model.ChartSummary{
		Points:     len(prices),
		Min:        lo,
		Max:        hi,
		Mean:       stat.Mean(prices, nil),
		DomainLow:  lo - pad,
		DomainHigh: hi + pad,
	}
}
