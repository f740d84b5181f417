package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"PriceSniper/internal/model"
)

const gaugeWidth = 20

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

var verdictIcons = map[model.Verdict]string{
	model.VerdictSkip:     "🔴",
	model.VerdictWait:     "🟡",
	model.VerdictOkay:     "🔵",
	model.VerdictBuy:      "🟢",
	model.VerdictTracking: "🆕",
}

// FormatMoney renders an amount with its currency symbol and thousands separators.
func FormatMoney(d decimal.Decimal, currency string) string {
	sym, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		if currency == "" {
			sym = currencySymbols["INR"]
		} else {
			sym = strings.ToUpper(currency) + " "
		}
	}
	return sym + humanize.CommafWithDigits(d.Round(2).InexactFloat64(), 2)
}

// GaugeBar draws the buy gauge as text: Skip on the left, Buy on the right.
func GaugeBar(r model.BuyScoreResult) string {
	if r.Degenerate {
		return strings.Repeat("░", gaugeWidth)
	}
	pos := int(r.Score/100*float64(gaugeWidth-1) + 0.5)
	var b strings.Builder
	for i := 0; i < gaugeWidth; i++ {
		if i == pos {
			b.WriteString("●")
		} else {
			b.WriteString("─")
		}
	}
	return b.String()
}

// FormatCard formats a product card into a Telegram message.
func FormatCard(card *model.Card, now time.Time) string {
	var b strings.Builder
	p := card.Product
	cur := p.Currency

	b.WriteString(fmt.Sprintf("🛒 <b>%s</b>\n", html.EscapeString(p.Name)))
	b.WriteString(fmt.Sprintf("#%d · %s · updated %s\n\n", p.ID, strings.ToUpper(string(p.Platform)),
		humanize.RelTime(p.UpdatedAt, now, "ago", "from now")))

	b.WriteString(fmt.Sprintf("Current price: <b>%s</b>", FormatMoney(p.CurrentPrice, cur)))
	if card.Discount > 5 {
		b.WriteString(fmt.Sprintf("  (-%d%%)", card.Discount))
	}
	b.WriteString("\n")
	if !p.IsAvailable {
		b.WriteString("⚠️ Out of stock\n")
	}

	// Gauge
	b.WriteString(fmt.Sprintf("\n%s <b>%s</b>", verdictIcons[card.Verdict], card.Verdict))
	if card.Gauge.Degenerate {
		b.WriteString(" · building price history\n")
	} else {
		b.WriteString(fmt.Sprintf(" · score %.0f/100\n", card.Gauge.Score))
	}
	b.WriteString(fmt.Sprintf("<code>Skip %s Buy</code>\n", GaugeBar(card.Gauge)))
	if card.Band.Min.Valid && card.Band.Max.Valid {
		b.WriteString(fmt.Sprintf("30d low %s · 30d high %s", FormatMoney(card.Band.Min.Decimal, cur), FormatMoney(card.Band.Max.Decimal, cur)))
		if card.PercentFromLow != nil {
			b.WriteString(fmt.Sprintf(" · %+d%% from low", *card.PercentFromLow))
		}
		b.WriteString("\n")
	}
	if card.Avg30Day.Valid {
		b.WriteString(fmt.Sprintf("30d avg %s\n", FormatMoney(card.Avg30Day.Decimal, cur)))
	}

	// Chart window
	b.WriteString(fmt.Sprintf("\n📈 <b>History (%s)</b>: ", card.Window))
	if card.Chart.Points == 0 {
		b.WriteString("no history data yet\n")
	} else {
		b.WriteString(fmt.Sprintf("%d points, min %s, max %s, avg %s\n", card.Chart.Points,
			FormatMoney(decimal.NewFromFloat(card.Chart.Min), cur),
			FormatMoney(decimal.NewFromFloat(card.Chart.Max), cur),
			FormatMoney(decimal.NewFromFloat(card.Chart.Mean), cur)))
	}

	if card.IsFakeSale {
		b.WriteString("\n🚩 <b>Fake sale</b>: the price was raised recently just to show a discount.\n")
	}
	if card.Recommendation != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", html.EscapeString(card.Recommendation)))
	}
	b.WriteString(fmt.Sprintf("\n🔔 Suggested alert: %s  (/alert %d)", FormatMoney(card.SuggestedTarget, cur), p.ID))
	return b.String()
}

// FormatDashboard formats the dashboard header and one line per product.
func FormatDashboard(dash *model.Dashboard) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>PriceSniper</b> | %s\n\n", dash.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Tracked items: %d\n", dash.Stats.Tracked))
	b.WriteString(fmt.Sprintf("Total value: %s\n", FormatMoney(dash.Stats.TotalValue, "")))
	b.WriteString(fmt.Sprintf("In stock: %d\n", dash.Stats.InStock))

	if len(dash.Cards) == 0 {
		b.WriteString("\nNo products tracked yet. Send /track &lt;url&gt; to start.")
		return b.String()
	}

	b.WriteString("\n")
	for _, c := range dash.Cards {
		score := "—"
		if !c.Gauge.Degenerate {
			score = fmt.Sprintf("%.0f", c.Gauge.Score)
		}
		b.WriteString(fmt.Sprintf("%s #%d %s\n    %s · %s %s\n",
			verdictIcons[c.Verdict], c.Product.ID, html.EscapeString(truncate(c.Product.Name, 48)),
			FormatMoney(c.Product.CurrentPrice, c.Product.Currency), c.Verdict, score))
	}
	return b.String()
}

// FormatAlerts lists the active alerts for a product.
func FormatAlerts(p *model.Product, alerts []model.Alert) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>Alerts</b> for #%d %s\n\n", p.ID, html.EscapeString(truncate(p.Name, 48))))
	if len(alerts) == 0 {
		b.WriteString("No alerts set.")
		return b.String()
	}
	for _, a := range alerts {
		var status string
		switch {
		case a.TriggeredAt != nil:
			status = "triggered " + a.TriggeredAt.Format("2006-01-02")
		case a.IsActive:
			status = "active"
		default:
			status = "inactive"
		}
		b.WriteString(fmt.Sprintf("• ≤ %s via %s (%s)\n", FormatMoney(a.TargetPrice, p.Currency), a.ContactMethod, status))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return strings.Join([]string{
		"Commands:",
		"• /list: dashboard",
		"• /card &lt;id&gt; [7D|30D|3M|1Y|ALL]: product card",
		"• /window &lt;id&gt; &lt;window&gt;: set chart window",
		"• /track &lt;url&gt;: start tracking",
		"• /refresh &lt;id&gt;|all: re-check price",
		"• /untrack &lt;id&gt;: stop tracking",
		"• /alert &lt;id&gt; [price]: set price-drop alert",
		"• /alerts &lt;id&gt;: list alerts",
	}, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
