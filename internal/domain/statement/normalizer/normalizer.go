// Package normalizer turns noisy bank-statement sheets into canonical transactions.
// It locates the real header row by its column markers, labels the rows below it,
// drops rows without a structured description and classifies the rest.
package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
	"github.com/FACorreiaa/statement-insights/pkg/money"
)

// Header cells a bank export is expected to carry. Matching is exact and case-sensitive.
const (
	ColumnDescription = "Description"
	ColumnDebit       = "Debit Amount"
	ColumnCredit      = "Credit Amount"
	ColumnBalance     = "Balance"
	ColumnDate        = "Txn Date"
)

// DefaultSelfIdentity is the account holder name used when none is configured.
const DefaultSelfIdentity = "DEEPAK"

// descriptionSeparator splits bank descriptions such as "UPI/AMAZON/SHOPPING".
const descriptionSeparator = "/"

// ErrHeaderNotFound means no row carries all of the header markers.
var ErrHeaderNotFound = errors.New("could not find header row with \"Description\", \"Debit Amount\" and \"Credit Amount\"")

// ID strategies accepted by Config.IDStrategy.
const (
	IDStrategyRandom     = "random"
	IDStrategySequential = "sequential"
)

// Config configures normalization.
type Config struct {
	// SelfIdentity names the account holder; it becomes the sender of debits and
	// the receiver of credits.
	SelfIdentity string
	// EuropeanFormat reads amounts as 1.234,56 instead of 1,234.56.
	EuropeanFormat bool
	// IDStrategy selects how transaction IDs are generated.
	IDStrategy string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		SelfIdentity: DefaultSelfIdentity,
		IDStrategy:   IDStrategyRandom,
	}
}

// Result is the output of a normalization pass.
type Result struct {
	HeaderRow    int // 0-based index of the located header row
	Header       sheet.Row
	Transactions []statement.Transaction
	Dropped      int // rows after the header without a "/" in their description
	Unknown      int // retained rows with neither debit nor credit populated
}

// Normalizer converts raw bank-statement rows to canonical transactions.
// It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	config Config
	ids    IDGenerator
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithIDGenerator overrides the generator chosen from Config.IDStrategy.
func WithIDGenerator(g IDGenerator) Option {
	return func(n *Normalizer) {
		n.ids = g
	}
}

// New creates a normalizer.
func New(config Config, opts ...Option) *Normalizer {
	if config.SelfIdentity == "" {
		config.SelfIdentity = DefaultSelfIdentity
	}

	n := &Normalizer{config: config}
	switch config.IDStrategy {
	case IDStrategySequential:
		n.ids = NewSequentialIDs()
	default:
		n.ids = RandomIDs{}
	}

	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SelfIdentity returns the configured account holder name.
func (n *Normalizer) SelfIdentity() string {
	return n.config.SelfIdentity
}

// Normalize runs the full pass over raw rows. Missing cells degrade to empty
// values; only a missing header row is an error, in which case nothing is returned.
func (n *Normalizer) Normalize(rows []sheet.Row) (*Result, error) {
	headerIdx, err := FindHeader(rows)
	if err != nil {
		return nil, err
	}

	header := rows[headerIdx]
	result := &Result{
		HeaderRow:    headerIdx,
		Header:       header,
		Transactions: make([]statement.Transaction, 0, len(rows)-headerIdx-1),
	}

	for _, row := range rows[headerIdx+1:] {
		labeled := sheet.Zip(header, row)
		if !strings.Contains(labeled.Get(ColumnDescription), descriptionSeparator) {
			result.Dropped++
			continue
		}

		tx := n.transform(labeled)
		if tx.Type == statement.TypeUnknown {
			result.Unknown++
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result, nil
}

// FindHeader returns the index of the first row containing every header marker.
func FindHeader(rows []sheet.Row) (int, error) {
	for i, row := range rows {
		if row.ContainsAll(ColumnDescription, ColumnDebit, ColumnCredit) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("normalize: %w", ErrHeaderNotFound)
}

// transform maps one labeled row into a transaction.
func (n *Normalizer) transform(row sheet.Record) statement.Transaction {
	description := row.Get(ColumnDescription)
	mid, category := SplitDescription(description)

	tx := statement.Transaction{
		Date:                    row.Get(ColumnDate),
		TransactionID:           n.ids.NextID(),
		Category:                category,
		BalanceAfterTransaction: row.Get(ColumnBalance),
		Description:             description,
	}

	if debit, ok := n.populated(row.Get(ColumnDebit)); ok {
		tx.Type = statement.TypeDebit
		tx.Amount = debit
		tx.Sender = n.config.SelfIdentity
		tx.Receiver = mid
	} else if credit, ok := n.populated(row.Get(ColumnCredit)); ok {
		tx.Type = statement.TypeCredit
		tx.Amount = credit
		tx.Sender = mid
		tx.Receiver = n.config.SelfIdentity
	} else {
		tx.Type = statement.TypeUnknown
	}

	return tx
}

// populated reports whether an amount cell is set. Cells without digits ("-",
// "N/A") and zero amounts are not; digits that do not form a number still mark
// the row, with a zero amount.
func (n *Normalizer) populated(cell string) (decimal.Decimal, bool) {
	d, err := money.ParseDecimal(cell, n.config.EuropeanFormat)
	switch {
	case errors.Is(err, money.ErrInvalidAmount):
		return decimal.Zero, true
	case err != nil, d.IsZero():
		return decimal.Zero, false
	}
	return d, true
}

// SplitDescription extracts the counterparty (second segment) and the category
// (last segment, only when there are at least three) from a bank description.
func SplitDescription(description string) (mid, category string) {
	parts := strings.Split(description, descriptionSeparator)
	if len(parts) > 1 {
		mid = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		category = strings.TrimSpace(parts[len(parts)-1])
	}
	return mid, category
}
