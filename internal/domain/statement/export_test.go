package statement

import (
	"bytes"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
)

func TestWriteCSV_Canonical(t *testing.T) {
	ledger := NewCanonicalLedger("tx.csv",
		[]string{"Date", "Type", "Amount", "Description"},
		nil)
	ledger.Records = append(ledger.Records, map[string]string{
		"Date": "2024-01-02", "Type": "debit", "Amount": "120", "Description": "Coffee, large",
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledger))
	assert.Equal(t, "Date,Type,Amount,Description\n2024-01-02,debit,120,\"Coffee, large\"\n", buf.String())
}

func TestWriteCSV_BankStatement(t *testing.T) {
	ledger := NewBankLedger("statement.xlsx", []Transaction{
		{
			Date:          "01-04-2024",
			TransactionID: "00000001",
			Sender:        "DEEPAK",
			Receiver:      "AMAZON",
			Category:      "SHOPPING",
			Amount:        decimal.RequireFromString("500.50"),
			Type:          TypeDebit,
			Description:   `UPI/AMAZON/"PRIME"`,
		},
	}, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledger))

	var rows []CSVRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "500.5", rows[0].Amount)
	assert.Equal(t, `UPI/AMAZON/"PRIME"`, rows[0].Description)
	assert.Equal(t, "debit", rows[0].Type)
}

func readWorkbook(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{XLSXSheet}, f.GetSheetList())
	rows, err := f.GetRows(XLSXSheet)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX_BankStatement(t *testing.T) {
	ledger := NewBankLedger("statement.xlsx", []Transaction{
		{
			Date:                    "01-04-2024",
			TransactionID:           "00000001",
			Sender:                  "DEEPAK",
			Receiver:                "AMAZON",
			Category:                "SHOPPING",
			Amount:                  decimal.RequireFromString("500.50"),
			Type:                    TypeDebit,
			BalanceAfterTransaction: "9,500.00",
			Description:             "UPI/AMAZON/SHOPPING",
		},
		{
			Date:        "03-04-2024",
			Type:        TypeUnknown,
			Description: "UPI/REVERSAL",
		},
	}, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ledger))

	rows := readWorkbook(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, XLSXHeaders, rows[0])
	assert.Equal(t, []string{
		"01-04-2024", "00000001", "DEEPAK", "AMAZON", "SHOPPING",
		"500.5", "debit", "9,500.00", "UPI/AMAZON/SHOPPING",
	}, rows[1])
	assert.Equal(t, "03-04-2024", rows[2][0])
	assert.Empty(t, rows[2][5])
	assert.Equal(t, "unknown", rows[2][6])
}

func TestWriteXLSX_Canonical(t *testing.T) {
	ledger := NewCanonicalLedger("tx.csv",
		[]string{"Date", "Type", "Amount", "Description"},
		[]sheet.Record{
			{"Date": "2024-01-02", "Type": "debit", "Amount": "1.234,56", "Description": "Rent"},
		})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ledger))

	rows := readWorkbook(t, buf.Bytes())
	assert.Equal(t, [][]string{
		{"Date", "Type", "Amount", "Description"},
		{"2024-01-02", "debit", "1.234,56", "Rent"},
	}, rows)
}
