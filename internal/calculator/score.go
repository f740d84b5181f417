package calculator

import (
	"github.com/shopspring/decimal"

	"PriceSniper/internal/model"
)

// Gauge band boundaries on the 0-100 scale.
const (
	WaitThreshold = 25.0
	OkayThreshold = 50.0
	BuyThreshold  = 75.0

	// NeutralScore is reported for degenerate bands.
	NeutralScore = 50.0
)

// Verdicts maps minimum scores to gauge labels, highest first.
var Verdicts = []struct {
	MinScore float64
	Verdict  model.Verdict
}{
	{BuyThreshold, model.VerdictBuy},
	{OkayThreshold, model.VerdictOkay},
	{WaitThreshold, model.VerdictWait},
}

var hundred = decimal.NewFromInt(100)

// BuyScore maps current into the band: 100 at the band floor, 0 at the
// ceiling, clamped outside it. A band with a missing bound or no width is
// degenerate. The band must satisfy Min <= Max.
func BuyScore(current decimal.Decimal, band model.PriceBand) model.BuyScoreResult {
	if !band.Min.Valid || !band.Max.Valid || band.Min.Decimal.Equal(band.Max.Decimal) {
		return model.BuyScoreResult{Score: NeutralScore, Degenerate: true}
	}
	lo, hi := band.Min.Decimal, band.Max.Decimal

	raw := hi.Sub(current).Div(hi.Sub(lo)).Mul(hundred)
	if raw.IsNegative() {
		raw = decimal.Zero
	}
	if raw.GreaterThan(hundred) {
		raw = hundred
	}
	return model.BuyScoreResult{Score: raw.InexactFloat64()}
}

// Classify maps a 0-100 score to its gauge label.
func Classify(score float64) model.Verdict {
	for _, v := range Verdicts {
		if score >= v.MinScore {
			return v.Verdict
		}
	}
	return model.VerdictSkip
}

// VerdictOf labels a gauge result, reporting Tracking for degenerate ones.
func VerdictOf(r model.BuyScoreResult) model.Verdict {
	if r.Degenerate {
		return model.VerdictTracking
	}
	return Classify(r.Score)
}
