package calculator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"PriceSniper/internal/model"
)

func TestBandFromHistory(t *testing.T) {
	in := []model.PriceObservation{
		obs(daysAgo(60), 500),
		obs(daysAgo(20), 1000),
		obs(daysAgo(10), 850),
		obs(daysAgo(2), 900),
	}
	b := BandFromHistory(in, day0)
	if !b.Min.Valid || !b.Max.Valid {
		t.Fatal("expected both bounds present")
	}
	if !b.Min.Decimal.Equal(decimal.NewFromInt(850)) {
		t.Errorf("expected min 850, got %s", b.Min.Decimal)
	}
	if !b.Max.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected max 1000, got %s", b.Max.Decimal)
	}
}

func TestBandFromHistory_NoRecentData(t *testing.T) {
	b := BandFromHistory([]model.PriceObservation{obs(daysAgo(90), 700)}, day0)
	if b.Min.Valid || b.Max.Valid {
		t.Errorf("expected absent bounds, got %+v", b)
	}
	if r := BuyScore(decimal.NewFromInt(700), b); !r.Degenerate {
		t.Error("expected a degenerate gauge for a band without recent data")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.PriceObservation{obs(daysAgo(3), 100), obs(daysAgo(2), 300), obs(daysAgo(1), 200)})
	if s.Points != 3 {
		t.Errorf("expected 3 points, got %d", s.Points)
	}
	if s.Min != 100 || s.Max != 300 {
		t.Errorf("expected min/max 100/300, got %v/%v", s.Min, s.Max)
	}
	if math.Abs(s.Mean-200) > 1e-9 {
		t.Errorf("expected mean 200, got %v", s.Mean)
	}
	if math.Abs(s.DomainLow-80) > 1e-9 || math.Abs(s.DomainHigh-320) > 1e-9 {
		t.Errorf("expected domain [80,320], got [%v,%v]", s.DomainLow, s.DomainHigh)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != (model.ChartSummary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
