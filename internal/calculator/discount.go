package calculator

import (
	"github.com/shopspring/decimal"

	"PriceSniper/internal/model"
)

var (
	// CeilingMarkup stands in for the list price when no higher price was seen.
	CeilingMarkup = decimal.RequireFromString("1.25")
	// DefaultAlertDiscount is how far below the current price a new alert targets.
	DefaultAlertDiscount = decimal.RequireFromString("0.05")

	half = decimal.RequireFromString("0.5")
)

// roundHalfUp rounds to the nearest integer, ties toward positive infinity.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// DisplayDiscount returns the whole-percent discount badge for current.
// The reference ceiling is highest when it exceeds current, otherwise
// current marked up by CeilingMarkup.
func DisplayDiscount(current decimal.Decimal, highest decimal.NullDecimal) int64 {
	ceiling := current.Mul(CeilingMarkup)
	if highest.Valid && highest.Decimal.GreaterThan(current) {
		ceiling = highest.Decimal
	}
	if ceiling.IsZero() {
		return 0
	}
	return roundHalfUp(ceiling.Sub(current).Div(ceiling).Mul(hundred)).IntPart()
}

// PercentFromLow returns how far current sits above the 30-day low, in whole
// percent. It returns false when the low is missing or zero.
func PercentFromLow(current decimal.Decimal, low decimal.NullDecimal) (int64, bool) {
	if !low.Valid || low.Decimal.IsZero() {
		return 0, false
	}
	return roundHalfUp(current.Sub(low.Decimal).Div(low.Decimal).Mul(hundred)).IntPart(), true
}

// SuggestedTarget is the pre-filled alert price: current less discount,
// rounded to a whole currency unit.
func SuggestedTarget(current, discount decimal.Decimal) decimal.Decimal {
	return roundHalfUp(current.Mul(decimal.NewFromInt(1).Sub(discount)))
}

// DashboardStats totals the dashboard header figures.
func DashboardStats(products []model.Product) model.Stats {
	stats := model.Stats{Tracked: len(products), TotalValue: decimal.Zero}
	for _, p := range products {
		if p.IsAvailable {
			stats.InStock++
		}
		stats.TotalValue = stats.TotalValue.Add(p.CurrentPrice)
	}
	return stats
}
