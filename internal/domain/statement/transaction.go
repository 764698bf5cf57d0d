// Package statement holds the canonical transaction model shared by the import
// pipeline and its consumers.
package statement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
)

// Type classifies a transaction relative to the account holder.
type Type string

const (
	TypeDebit   Type = "debit"
	TypeCredit  Type = "credit"
	TypeUnknown Type = "unknown"
)

// Shape names the input layout a ledger was built from.
type Shape string

const (
	ShapeEmpty         Shape = "empty"
	ShapeCanonical     Shape = "canonical"
	ShapeBankStatement Shape = "bank_statement"
)

// Transaction is the normalized unit consumed by analytics.
type Transaction struct {
	Date                    string          `json:"date"`
	TransactionID           string          `json:"transactionId"`
	Sender                  string          `json:"sender"`
	Receiver                string          `json:"receiver"`
	Category                string          `json:"category"`
	Amount                  decimal.Decimal `json:"amount"`
	Type                    Type            `json:"type"`
	BalanceAfterTransaction string          `json:"balanceAfterTransaction"`
	Description             string          `json:"description"`
}

// Columns is the field order used whenever transactions are rendered as a table.
var Columns = []string{
	"date",
	"transactionId",
	"sender",
	"receiver",
	"category",
	"amount",
	"type",
	"balanceAfterTransaction",
	"description",
}

// Record renders the transaction as a table row keyed by Columns.
// Empty fields are left out, matching how sheet records treat empty cells.
func (t Transaction) Record() sheet.Record {
	rec := make(sheet.Record, len(Columns))
	set := func(k, v string) {
		if v != "" {
			rec[k] = v
		}
	}
	set("date", t.Date)
	set("transactionId", t.TransactionID)
	set("sender", t.Sender)
	set("receiver", t.Receiver)
	set("category", t.Category)
	if !t.Amount.IsZero() {
		rec["amount"] = t.Amount.String()
	}
	set("type", string(t.Type))
	set("balanceAfterTransaction", t.BalanceAfterTransaction)
	set("description", t.Description)
	return rec
}

// CSVRow is the export form of a transaction.
type CSVRow struct {
	Date                    string `csv:"date"`
	TransactionID           string `csv:"transactionId"`
	Sender                  string `csv:"sender"`
	Receiver                string `csv:"receiver"`
	Category                string `csv:"category"`
	Amount                  string `csv:"amount"`
	Type                    string `csv:"type"`
	BalanceAfterTransaction string `csv:"balanceAfterTransaction"`
	Description             string `csv:"description"`
}

// CSVRow converts the transaction for gocsv marshaling.
func (t Transaction) CSVRow() CSVRow {
	return CSVRow{
		Date:                    t.Date,
		TransactionID:           t.TransactionID,
		Sender:                  t.Sender,
		Receiver:                t.Receiver,
		Category:                t.Category,
		Amount:                  t.Amount.String(),
		Type:                    string(t.Type),
		BalanceAfterTransaction: t.BalanceAfterTransaction,
		Description:             t.Description,
	}
}

// Ledger is the outcome of importing one file. It fully replaces any earlier one.
type Ledger struct {
	ID          uuid.UUID      `json:"id"`
	Filename    string         `json:"filename"`
	SheetName   string         `json:"sheet"`
	Shape       Shape          `json:"shape"`
	Fingerprint string         `json:"fingerprint"`
	Columns     []string       `json:"columns"`
	Records     []sheet.Record `json:"records"`
	// Transactions is only set for bank statements; canonical sheets pass
	// through as Records untouched.
	Transactions []Transaction `json:"transactions,omitempty"`
	DroppedRows  int           `json:"droppedRows"`
	// DecimalComma marks Records whose amounts are written as 1.234,56.
	// Normalized bank transactions always use a decimal point.
	DecimalComma bool      `json:"decimalComma,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewCanonicalLedger wraps records that already match the canonical layout.
func NewCanonicalLedger(filename string, columns []string, records []sheet.Record) *Ledger {
	return &Ledger{
		ID:        uuid.New(),
		Filename:  filename,
		Shape:     ShapeCanonical,
		Columns:   columns,
		Records:   records,
		CreatedAt: time.Now().UTC(),
	}
}

// NewBankLedger wraps normalized transactions.
func NewBankLedger(filename string, txs []Transaction, dropped int) *Ledger {
	records := make([]sheet.Record, len(txs))
	for i, tx := range txs {
		records[i] = tx.Record()
	}
	return &Ledger{
		ID:           uuid.New(),
		Filename:     filename,
		Shape:        ShapeBankStatement,
		Columns:      Columns,
		Records:      records,
		Transactions: txs,
		DroppedRows:  dropped,
		CreatedAt:    time.Now().UTC(),
	}
}

// Len returns the number of rows handed to downstream consumers.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}
