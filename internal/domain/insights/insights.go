// Package insights derives descriptive analytics from an imported ledger.
// The result always carries seven keys; a generator that cannot produce one
// falls back to empty containers so callers can render an empty state.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
)

// Generator turns a ledger into insights.
type Generator interface {
	Generate(ctx context.Context, ledger *statement.Ledger) (Insights, error)
}

// Amount is a monetary figure as reported to the UI. Models sometimes quote
// numbers, so both 1200 and "1,200" decode.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.NewReplacer(",", "", " ", "").Replace(unquoted)
		if s == "" {
			*a = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = Amount(f)
	return nil
}

func roundAmount(f float64) Amount {
	return Amount(math.Round(f*100) / 100)
}

// ChartInsight is the spend attributed to one category.
type ChartInsight struct {
	Label  string `json:"label"`
	Amount Amount `json:"amount"`
}

// MonthlyTrend is the spend in one calendar month (YYYY-MM).
type MonthlyTrend struct {
	Month  string `json:"month"`
	Amount Amount `json:"amount"`
}

// TopMerchant is a counterparty ranked by spend.
type TopMerchant struct {
	Merchant string `json:"merchant"`
	Amount   Amount `json:"amount"`
}

// Anomaly flags an unusual transaction.
type Anomaly struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
}

// Summary holds the headline figures.
type Summary struct {
	TotalSpent         Amount `json:"total_spent"`
	AverageTransaction Amount `json:"average_transaction"`
	NumTransactions    int    `json:"num_transactions"`
	HighestCategory    string `json:"highest_category"`
}

// Insights is the structured analytics object.
type Insights struct {
	ChartInsights []ChartInsight `json:"chart_insights"`
	MonthlyTrends []MonthlyTrend `json:"monthly_trends"`
	TopMerchants  []TopMerchant  `json:"top_merchants"`
	Anomalies     []Anomaly      `json:"anomalies"`
	Summary       Summary        `json:"summary"`
	Reports       []string       `json:"reports"`
	Suggestions   []string       `json:"suggestions"`
}

// Empty returns insights with every container present and empty.
func Empty() Insights {
	return Insights{
		ChartInsights: []ChartInsight{},
		MonthlyTrends: []MonthlyTrend{},
		TopMerchants:  []TopMerchant{},
		Anomalies:     []Anomaly{},
		Reports:       []string{},
		Suggestions:   []string{},
	}
}

// IsEmpty reports whether no analytics were produced.
func (i Insights) IsEmpty() bool {
	return len(i.ChartInsights) == 0 &&
		len(i.MonthlyTrends) == 0 &&
		len(i.TopMerchants) == 0 &&
		len(i.Anomalies) == 0 &&
		len(i.Reports) == 0 &&
		len(i.Suggestions) == 0 &&
		i.Summary == Summary{}
}

// withDefaults replaces nil containers with empty ones.
func (i Insights) withDefaults() Insights {
	if i.ChartInsights == nil {
		i.ChartInsights = []ChartInsight{}
	}
	if i.MonthlyTrends == nil {
		i.MonthlyTrends = []MonthlyTrend{}
	}
	if i.TopMerchants == nil {
		i.TopMerchants = []TopMerchant{}
	}
	if i.Anomalies == nil {
		i.Anomalies = []Anomaly{}
	}
	if i.Reports == nil {
		i.Reports = []string{}
	}
	if i.Suggestions == nil {
		i.Suggestions = []string{}
	}
	return i
}

// Decode parses a model response into insights. Markdown code fences and any
// text around the outermost JSON object are ignored; absent keys default to
// empty containers.
func Decode(text string) (Insights, error) {
	clean := cleanModelJSON(text)
	if clean == "" {
		return Empty(), fmt.Errorf("decode insights: empty response")
	}

	var out Insights
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return Empty(), fmt.Errorf("decode insights: %w", err)
	}
	return out.withDefaults(), nil
}

// cleanModelJSON strips ```json fences and keeps the outermost {...} span.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
