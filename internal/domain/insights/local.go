package insights

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/pkg/money"
)

const (
	topMerchantLimit   = 5
	minAnomalySample   = 3
	anomalySigma       = 2.0
	budgetShareTrigger = 40.0
	uncategorized      = "Uncategorized"
)

// dateLayouts are tried in order when bucketing transactions by month.
// Day-first layouts come before month-first ones.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-01-06",
	"02/01/06",
	time.RFC3339,
}

// LocalGenerator computes insights without calling a model.
type LocalGenerator struct {
	currency string
	logger   *slog.Logger
}

// NewLocalGenerator creates an offline generator that formats amounts in currency.
func NewLocalGenerator(currency string, logger *slog.Logger) *LocalGenerator {
	if currency == "" {
		currency = money.INR
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalGenerator{currency: currency, logger: logger}
}

// Generate implements Generator.
func (g *LocalGenerator) Generate(ctx context.Context, ledger *statement.Ledger) (Insights, error) {
	if err := ctx.Err(); err != nil {
		return Empty(), err
	}
	if ledger == nil || ledger.Len() == 0 {
		return Empty(), nil
	}

	entries := readEntries(ledger.Records, ledger.DecimalComma)
	var debits []entry
	creditTotal := decimal.Zero
	for _, e := range entries {
		switch e.kind {
		case statement.TypeDebit:
			e.amount = e.amount.Abs()
			debits = append(debits, e)
		case statement.TypeCredit:
			creditTotal = creditTotal.Add(e.amount.Abs())
		}
	}

	out := Empty()
	out.ChartInsights = spendByCategory(debits)
	out.MonthlyTrends = monthlyTrends(debits)
	out.TopMerchants = topMerchants(debits)
	out.Anomalies = anomalies(debits)

	spent := decimal.Zero
	for _, d := range debits {
		spent = spent.Add(d.amount)
	}
	out.Summary = Summary{
		TotalSpent:      roundAmount(spent.InexactFloat64()),
		NumTransactions: len(entries),
	}
	if len(debits) > 0 {
		out.Summary.AverageTransaction = roundAmount(spent.InexactFloat64() / float64(len(debits)))
	}
	if len(out.ChartInsights) > 0 {
		out.Summary.HighestCategory = out.ChartInsights[0].Label
	}

	out.Reports = g.reports(out, creditTotal)
	out.Suggestions = g.suggestions(out, spent, creditTotal)

	g.logger.Debug("local insights generated",
		slog.Int("records", len(entries)),
		slog.Int("debits", len(debits)),
		slog.Int("anomalies", len(out.Anomalies)),
	)
	return out, nil
}

func spendByCategory(debits []entry) []ChartInsight {
	totals := make(map[string]float64)
	var order []string
	for _, d := range debits {
		label := d.category
		if label == "" {
			label = uncategorized
		}
		if _, ok := totals[label]; !ok {
			order = append(order, label)
		}
		totals[label] += d.amount.InexactFloat64()
	}

	out := make([]ChartInsight, 0, len(order))
	for _, label := range order {
		out = append(out, ChartInsight{Label: label, Amount: roundAmount(totals[label])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}

func monthlyTrends(debits []entry) []MonthlyTrend {
	totals := make(map[string]float64)
	for _, d := range debits {
		t, ok := parseDate(d.date)
		if !ok {
			continue
		}
		totals[t.Format("2006-01")] += d.amount.InexactFloat64()
	}

	out := make([]MonthlyTrend, 0, len(totals))
	for month, amount := range totals {
		out = append(out, MonthlyTrend{Month: month, Amount: roundAmount(amount)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func topMerchants(debits []entry) []TopMerchant {
	spend := make([]merchantTotal, 0, len(debits))
	for _, d := range debits {
		name := merchantName(d.counterparty)
		if name == "" {
			continue
		}
		spend = append(spend, merchantTotal{name: name, amount: d.amount.InexactFloat64()})
	}

	groups := groupMerchants(spend)
	if len(groups) > topMerchantLimit {
		groups = groups[:topMerchantLimit]
	}

	out := make([]TopMerchant, 0, len(groups))
	for _, g := range groups {
		out = append(out, TopMerchant{Merchant: g.name, Amount: roundAmount(g.amount)})
	}
	return out
}

// anomalies flags debits more than two standard deviations above the mean.
func anomalies(debits []entry) []Anomaly {
	out := []Anomaly{}
	if len(debits) < minAnomalySample {
		return out
	}

	var sum float64
	for _, d := range debits {
		sum += d.amount.InexactFloat64()
	}
	mean := sum / float64(len(debits))

	var variance float64
	for _, d := range debits {
		diff := d.amount.InexactFloat64() - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(len(debits)))
	if stddev == 0 {
		return out
	}

	threshold := mean + anomalySigma*stddev
	for _, d := range debits {
		amount := d.amount.InexactFloat64()
		if amount <= threshold {
			continue
		}
		description := "Unusually high spending"
		if name := merchantName(d.counterparty); name != "" {
			description += " at " + name
		} else if d.description != "" {
			description += ": " + d.description
		}
		out = append(out, Anomaly{Date: d.date, Description: description, Amount: roundAmount(amount)})
	}
	return out
}

func (g *LocalGenerator) display(a Amount) string {
	return money.Display(decimal.NewFromFloat(float64(a)), g.currency)
}

func (g *LocalGenerator) reports(in Insights, credited decimal.Decimal) []string {
	reports := []string{}

	chart := in.ChartInsights
	if len(chart) > 0 {
		reports = append(reports, fmt.Sprintf("You spent the most on %s (%s).", chart[0].Label, g.display(chart[0].Amount)))
	}
	switch {
	case len(chart) > 2:
		reports = append(reports, fmt.Sprintf("%s and %s were your next highest expenses.", chart[1].Label, chart[2].Label))
	case len(chart) == 2:
		reports = append(reports, fmt.Sprintf("%s was your next highest expense.", chart[1].Label))
	}

	if len(in.MonthlyTrends) > 1 {
		peak := in.MonthlyTrends[0]
		for _, m := range in.MonthlyTrends[1:] {
			if m.Amount > peak.Amount {
				peak = m
			}
		}
		reports = append(reports, fmt.Sprintf("Spending peaked in %s at %s.", peak.Month, g.display(peak.Amount)))
	}

	if len(in.TopMerchants) > 0 {
		top := in.TopMerchants[0]
		reports = append(reports, fmt.Sprintf("%s was your top merchant with %s spent.", top.Merchant, g.display(top.Amount)))
	}

	if credited.IsPositive() {
		reports = append(reports, fmt.Sprintf("You received %s and spent %s.",
			money.Display(credited, g.currency), g.display(in.Summary.TotalSpent)))
	}
	return reports
}

func (g *LocalGenerator) suggestions(in Insights, spent, credited decimal.Decimal) []string {
	suggestions := []string{}

	if len(in.ChartInsights) > 0 && spent.IsPositive() {
		top := in.ChartInsights[0]
		share := float64(top.Amount) / spent.InexactFloat64() * 100
		if share >= budgetShareTrigger && top.Label != uncategorized {
			suggestions = append(suggestions, fmt.Sprintf(
				"Consider setting a monthly budget for %s, which makes up %.0f%% of your spending.", top.Label, share))
		}
	}

	switch n := len(in.Anomalies); {
	case n == 1:
		suggestions = append(suggestions, "Review the unusually large transaction flagged above.")
	case n > 1:
		suggestions = append(suggestions, fmt.Sprintf("Review the %d unusually large transactions flagged above.", n))
	}

	if credited.IsPositive() && spent.GreaterThan(credited) {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your spending exceeded what you received by %s; look for recurring costs to trim.",
			money.Display(spent.Sub(credited), g.currency)))
	}

	if len(suggestions) == 0 && spent.IsPositive() {
		suggestions = append(suggestions, "Your spending looks balanced; keep tracking it month by month.")
	}
	return suggestions
}
