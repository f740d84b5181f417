package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"PriceSniper/internal/calculator"
	"PriceSniper/internal/logger"
	"PriceSniper/internal/model"
)

const (
	// bandDays is the history the local band fallback needs.
	bandDays = 30
	// allHistoryDays is requested for the unbounded window.
	allHistoryDays = 3650
)

// WindowSource tells the collector which chart window each product uses.
type WindowSource interface {
	Window(productID int64) model.TimeWindow
}

// Collector fetches tracker data and renders it into cards.
type Collector struct {
	Fetcher       Fetcher
	AlertDiscount decimal.Decimal
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, alertDiscount decimal.Decimal) *Collector {
	return &Collector{Fetcher: fetcher, AlertDiscount: alertDiscount}
}

// HistoryDays is how many days of history to request so window w is fully
// covered and the 30-day band can still be computed locally.
func HistoryDays(w model.TimeWindow, now time.Time) int {
	cutoff, bounded := calculator.Cutoff(w, now)
	if !bounded {
		return allHistoryDays
	}
	days := int(math.Ceil(now.Sub(cutoff).Hours() / 24))
	if days < bandDays {
		days = bandDays
	}
	return days
}

// Card fetches history and analysis for p and renders its card.
func (c *Collector) Card(ctx context.Context, p model.Product, w model.TimeWindow, now time.Time) (*model.Card, error) {
	history, err := c.Fetcher.PriceHistory(ctx, p.ID, HistoryDays(w, now))
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	analysis, err := c.Fetcher.Analysis(ctx, p.ID)
	if err != nil {
		logger.L.Warnf("analysis for product %d failed: %v, using local 30-day band", p.ID, err)
		analysis = nil
	}

	return BuildCard(p, w, history, analysis, c.AlertDiscount, now), nil
}

// CardByID looks the product up first.
func (c *Collector) CardByID(ctx context.Context, id int64, w model.TimeWindow, now time.Time) (*model.Card, error) {
	p, err := c.Fetcher.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	return c.Card(ctx, *p, w, now)
}

// BuildCard renders a card from already-fetched data. A nil analysis means
// the band comes from the history itself.
func BuildCard(p model.Product, w model.TimeWindow, history []model.PriceObservation, analysis *model.Analysis, alertDiscount decimal.Decimal, now time.Time) *model.Card {
	visible := calculator.FilterRange(history, w, now)

	band := calculator.BandFromHistory(history, now)
	card := &model.Card{
		Product:         p,
		Window:          w,
		History:         visible,
		Chart:           calculator.Summarize(visible),
		SuggestedTarget: calculator.SuggestedTarget(p.CurrentPrice, alertDiscount),
	}
	if analysis != nil {
		band = analysis.Band()
		card.Recommendation = analysis.Recommendation
		card.IsFakeSale = analysis.IsFakeSale
		card.Avg30Day = analysis.Avg30Day
	}

	card.Band = band
	card.Gauge = calculator.BuyScore(p.CurrentPrice, band)
	card.Verdict = calculator.VerdictOf(card.Gauge)
	card.Discount = calculator.DisplayDiscount(p.CurrentPrice, band.Max)
	if pct, ok := calculator.PercentFromLow(p.CurrentPrice, band.Min); ok {
		card.PercentFromLow = &pct
	}
	return card
}

// Dashboard renders every tracked product, newest first. A product whose
// history cannot be fetched still gets a card, built without history.
func (c *Collector) Dashboard(ctx context.Context, windows WindowSource, now time.Time) (*model.Dashboard, error) {
	products, err := c.Fetcher.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	dash := &model.Dashboard{
		Stats:       calculator.DashboardStats(products),
		Cards:       make([]model.Card, 0, len(products)),
		GeneratedAt: now,
	}
	for _, p := range products {
		w := windows.Window(p.ID)
		card, err := c.Card(ctx, p, w, now)
		if err != nil {
			logger.L.Warnf("card for product %d failed: %v, rendering without history", p.ID, err)
			card = BuildCard(p, w, nil, nil, c.AlertDiscount, now)
		}
		dash.Cards = append(dash.Cards, *card)
	}
	return dash, nil
}

// Reading condenses a card into a cache entry.
func Reading(card *model.Card, at time.Time) *model.Reading {
	return &model.Reading{
		ProductID:  card.Product.ID,
		Name:       card.Product.Name,
		Price:      card.Product.CurrentPrice,
		Score:      card.Gauge.Score,
		Degenerate: card.Gauge.Degenerate,
		Verdict:    card.Verdict,
		Min:        card.Band.Min,
		Max:        card.Band.Max,
		RecordedAt: at,
	}
}
