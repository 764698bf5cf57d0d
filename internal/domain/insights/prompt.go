package insights

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
)

// EncodeCSV renders records as the comma-separated table handed to the model.
// The header row lists columns as-is; every value is written as a JSON string
// so embedded quotes and commas cannot break the row.
func EncodeCSV(columns []string, records []sheet.Record) string {
	if len(columns) == 0 || len(records) == 0 {
		return ""
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(columns, ","))

	values := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			values[i] = quote(rec.Get(col))
		}
		lines = append(lines, strings.Join(values, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

const promptPreamble = "You are a financial assistant analyzing transaction history in CSV format:\n\n"

const promptTemplate = `

Return your insights in the following structured JSON format:
{
  "chart_insights": [
    { "label": "Food", "amount": 2500 },
    { "label": "Rent", "amount": 8000 },
    { "label": "Transport", "amount": 1000 }
  ],
  "monthly_trends": [
    { "month": "2024-01", "amount": 5000 },
    { "month": "2024-02", "amount": 6000 }
  ],
  "top_merchants": [
    { "merchant": "Amazon", "amount": 1200 },
    { "merchant": "Walmart", "amount": 900 }
  ],
  "anomalies": [
    { "date": "2024-02-15", "description": "Unusually high spending at Apple Store", "amount": 2000 }
  ],
  "summary": {
    "total_spent": 15000,
    "average_transaction": 500,
    "num_transactions": 30,
    "highest_category": "Rent"
  },
  "reports": [
    "You spent the most on Rent this month.",
    "Transport and Food were your next highest expenses."
  ],
  "suggestions": [
    "Consider cutting down on food delivery expenses.",
    "Use public transport to save on travel costs."
  ]
}
Only return JSON. Do not include markdown formatting like triple backticks.`

// BuildPrompt wraps the encoded transaction table with the response template.
func BuildPrompt(csvData string) string {
	return promptPreamble + csvData + promptTemplate
}
