package insights

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
)

func debit(date, receiver, category string, amount int64) statement.Transaction {
	return statement.Transaction{
		Date:        date,
		Sender:      "DEEPAK",
		Receiver:    receiver,
		Category:    category,
		Amount:      decimal.NewFromInt(amount),
		Type:        statement.TypeDebit,
		Description: "UPI/" + receiver + "/" + category,
	}
}

func sampleBankLedger() *statement.Ledger {
	txs := []statement.Transaction{
		debit("01-04-2024", "AMAZON", "SHOPPING", 200),
		debit("03-04-2024", "AMAZON PAY", "SHOPPING", 200),
		debit("05-04-2024", "SWIGGY", "FOOD", 200),
		debit("07-04-2024", "ZOMATO", "FOOD", 200),
		debit("09-04-2024", "SWIGGY", "FOOD", 200),
		debit("02-05-2024", "ACME STORES", "SHOPPING", 200),
		debit("04-05-2024", "ACME STORE", "SHOPPING", 200),
		debit("06-05-2024", "UBER", "TRAVEL", 200),
		debit("08-05-2024", "LANDLORD", "RENT", 5000),
		{
			Date:        "01-04-2024",
			Sender:      "ACME CORP",
			Receiver:    "DEEPAK",
			Category:    "SALARY",
			Amount:      decimal.NewFromInt(20000),
			Type:        statement.TypeCredit,
			Description: "NEFT/ACME CORP/SALARY",
		},
	}
	return statement.NewBankLedger("statement.xlsx", txs, 0)
}

func TestLocalGenerator_Generate(t *testing.T) {
	g := NewLocalGenerator("", discardLogger())

	got, err := g.Generate(context.Background(), sampleBankLedger())
	require.NoError(t, err)

	assert.Equal(t, []ChartInsight{
		{Label: "RENT", Amount: 5000},
		{Label: "SHOPPING", Amount: 800},
		{Label: "FOOD", Amount: 600},
		{Label: "TRAVEL", Amount: 200},
	}, got.ChartInsights)

	assert.Equal(t, []MonthlyTrend{
		{Month: "2024-04", Amount: 1000},
		{Month: "2024-05", Amount: 5600},
	}, got.MonthlyTrends)

	assert.Equal(t, []TopMerchant{
		{Merchant: "Landlord", Amount: 5000},
		{Merchant: "Amazon", Amount: 400},
		{Merchant: "Swiggy", Amount: 400},
		{Merchant: "Acme Stores", Amount: 400},
		{Merchant: "Zomato", Amount: 200},
	}, got.TopMerchants)

	require.Len(t, got.Anomalies, 1)
	assert.Equal(t, Anomaly{Date: "08-05-2024", Description: "Unusually high spending at Landlord", Amount: 5000}, got.Anomalies[0])

	assert.Equal(t, Summary{
		TotalSpent:         6600,
		AverageTransaction: 733.33,
		NumTransactions:    10,
		HighestCategory:    "RENT",
	}, got.Summary)

	require.NotEmpty(t, got.Reports)
	assert.Contains(t, got.Reports[0], "You spent the most on RENT")
	assert.Contains(t, got.Reports, "SHOPPING and FOOD were your next highest expenses.")

	require.NotEmpty(t, got.Suggestions)
	assert.Contains(t, got.Suggestions[0], "budget for RENT, which makes up 76% of your spending")
	assert.Contains(t, got.Suggestions, "Review the unusually large transaction flagged above.")
}

func TestLocalGenerator_CanonicalLedger(t *testing.T) {
	ledger := statement.NewCanonicalLedger("tx.csv",
		[]string{"Date", "Type", "Amount", "Description", "Category"},
		[]sheet.Record{
			{"Date": "2024-01-05", "Type": "Debit", "Amount": "1,200.00", "Description": "Groceries", "Category": "Food"},
			{"Date": "2024-02-05", "Type": "DEBIT", "Amount": "300", "Description": "Bus pass"},
			{"Date": "2024-02-07", "Type": "credit", "Amount": "5000", "Description": "Salary"},
		})

	got, err := NewLocalGenerator("USD", discardLogger()).Generate(context.Background(), ledger)
	require.NoError(t, err)

	assert.Equal(t, []ChartInsight{
		{Label: "Food", Amount: 1200},
		{Label: "Uncategorized", Amount: 300},
	}, got.ChartInsights)
	assert.Equal(t, []MonthlyTrend{
		{Month: "2024-01", Amount: 1200},
		{Month: "2024-02", Amount: 300},
	}, got.MonthlyTrends)
	assert.Empty(t, got.TopMerchants)
	assert.Empty(t, got.Anomalies)
	assert.Equal(t, 3, got.Summary.NumTransactions)
	assert.Contains(t, got.Reports, "You received $5,000.00 and spent $1,500.00.")
}

func TestLocalGenerator_DecimalCommaLedger(t *testing.T) {
	ledger := statement.NewCanonicalLedger("tx.csv",
		[]string{"date", "type", "amount", "description"},
		[]sheet.Record{
			{"date": "2024-01-02", "type": "debit", "amount": "1.234,56", "description": "Rent"},
			{"date": "2024-01-09", "type": "debit", "amount": "65,44", "description": "Groceries"},
		})
	ledger.DecimalComma = true

	got, err := NewLocalGenerator("EUR", discardLogger()).Generate(context.Background(), ledger)
	require.NoError(t, err)

	assert.Equal(t, Amount(1300), got.Summary.TotalSpent)
	assert.Equal(t, Amount(650), got.Summary.AverageTransaction)
	assert.Equal(t, []MonthlyTrend{{Month: "2024-01", Amount: 1300}}, got.MonthlyTrends)
}

func TestLocalGenerator_EmptyLedger(t *testing.T) {
	g := NewLocalGenerator("", discardLogger())

	got, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Reports)

	got, err = g.Generate(context.Background(), statement.NewBankLedger("x.xlsx", nil, 3))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestLocalGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewLocalGenerator("", discardLogger()).Generate(ctx, sampleBankLedger())
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, got.IsEmpty())
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-04-01", "01-04-2024", "01/04/2024", "1/4/2024", "01-Apr-2024", "01 Apr 2024", "01-04-24"} {
		d, ok := parseDate(s)
		if assert.True(t, ok, s) {
			assert.Equal(t, "2024-04", d.Format("2006-01"), s)
		}
	}

	_, ok := parseDate("yesterday")
	assert.False(t, ok)
}
