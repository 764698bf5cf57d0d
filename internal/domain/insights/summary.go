package insights

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
	"github.com/FACorreiaa/statement-insights/pkg/money"
)

// Segment aggregates one transaction type.
type Segment struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
	Largest decimal.Decimal `json:"largest"`
}

// Totals backs the summary cards shown above the insights.
type Totals struct {
	Currency      string          `json:"currency"`
	TotalDebited  decimal.Decimal `json:"totalDebited"`
	TotalCredited decimal.Decimal `json:"totalCredited"`
	AverageSpent  decimal.Decimal `json:"averageSpent"`
	Debit         Segment         `json:"debit"`
	Credit        Segment         `json:"credit"`

	TotalDebitedDisplay  string `json:"totalDebitedDisplay"`
	TotalCreditedDisplay string `json:"totalCreditedDisplay"`
	AverageSpentDisplay  string `json:"averageSpentDisplay"`
}

// Summarize computes debit and credit totals over records. The type and amount
// columns are matched case-insensitively; amounts that do not parse count as zero.
// decimalComma reads amounts written as 1.234,56.
func Summarize(records []sheet.Record, currency string, decimalComma bool) Totals {
	if currency == "" {
		currency = money.INR
	}

	var debits, credits []decimal.Decimal
	for _, e := range readEntries(records, decimalComma) {
		switch e.kind {
		case statement.TypeDebit:
			debits = append(debits, e.amount)
		case statement.TypeCredit:
			credits = append(credits, e.amount)
		}
	}

	t := Totals{
		Currency: currency,
		Debit:    segment(debits),
		Credit:   segment(credits),
	}
	t.TotalDebited = t.Debit.Total
	t.TotalCredited = t.Credit.Total
	t.AverageSpent = t.Debit.Average

	t.TotalDebitedDisplay = money.Display(t.TotalDebited, currency)
	t.TotalCreditedDisplay = money.Display(t.TotalCredited, currency)
	t.AverageSpentDisplay = money.Display(t.AverageSpent, currency)
	return t
}

func segment(amounts []decimal.Decimal) Segment {
	s := Segment{
		Count:   len(amounts),
		Total:   decimal.Zero,
		Average: decimal.Zero,
		Largest: decimal.Zero,
	}
	if len(amounts) == 0 {
		return s
	}

	s.Total = decimal.Sum(amounts[0], amounts[1:]...)
	s.Average = s.Total.Div(decimal.NewFromInt(int64(len(amounts)))).Round(2)
	s.Largest = decimal.Max(amounts[0], amounts[1:]...)
	return s
}

// entry is the analytics view of one record.
type entry struct {
	date         string
	kind         statement.Type
	amount       decimal.Decimal
	category     string
	counterparty string
	description  string
}

// readEntries extracts the fields analytics need from records of either shape.
func readEntries(records []sheet.Record, decimalComma bool) []entry {
	out := make([]entry, 0, len(records))
	for _, rec := range records {
		e := entry{
			date:        lookup(rec, "date", "txn date"),
			category:    lookup(rec, "category"),
			description: lookup(rec, "description"),
			amount:      decimal.Zero,
		}

		switch strings.ToLower(strings.TrimSpace(lookup(rec, "type"))) {
		case string(statement.TypeDebit):
			e.kind = statement.TypeDebit
			e.counterparty = lookup(rec, "receiver", "merchant", "payee")
		case string(statement.TypeCredit):
			e.kind = statement.TypeCredit
			e.counterparty = lookup(rec, "sender", "payer")
		default:
			e.kind = statement.TypeUnknown
		}

		if d, err := money.ParseDecimal(lookup(rec, "amount"), decimalComma); err == nil {
			e.amount = d
		}
		out = append(out, e)
	}
	return out
}

// lookup returns the first non-empty value among keys.
func lookup(rec sheet.Record, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec.Lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
