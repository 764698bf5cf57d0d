package statement

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// XLSXSheet names the worksheet WriteXLSX produces.
const XLSXSheet = "Formatted"

// XLSXHeaders is the header row of an exported bank statement workbook.
var XLSXHeaders = []string{
	"Date",
	"Transaction ID",
	"Sender",
	"Receiver",
	"Category",
	"Amount",
	"Type",
	"Balance After Transaction",
	"Description",
}

// WriteCSV writes the ledger as CSV: typed transactions for bank statements,
// the original columns for canonical sheets.
func WriteCSV(w io.Writer, ledger *Ledger) error {
	if ledger.Shape == ShapeBankStatement {
		rows := make([]CSVRow, len(ledger.Transactions))
		for i, tx := range ledger.Transactions {
			rows[i] = tx.CSVRow()
		}
		if err := gocsv.Marshal(rows, w); err != nil {
			return fmt.Errorf("marshal transactions: %w", err)
		}
		return nil
	}

	out := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if err := out.Write(ledger.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(ledger.Columns))
	for _, rec := range ledger.Records {
		for i, col := range ledger.Columns {
			row[i] = rec.Get(col)
		}
		if err := out.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	out.Flush()
	return out.Error()
}

// WriteXLSX writes the ledger as a single-sheet workbook named Formatted.
// Bank statement amounts are written as numbers; canonical cells are copied as text.
func WriteXLSX(w io.Writer, ledger *Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), XLSXSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := ledger.Columns
	if ledger.Shape == ShapeBankStatement {
		header = XLSXHeaders
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	if ledger.Shape == ShapeBankStatement {
		for i, tx := range ledger.Transactions {
			var amount any = ""
			if !tx.Amount.IsZero() {
				amount = tx.Amount.InexactFloat64()
			}
			row := []any{
				tx.Date, tx.TransactionID, tx.Sender, tx.Receiver, tx.Category,
				amount, string(tx.Type), tx.BalanceAfterTransaction, tx.Description,
			}
			if err := setRow(f, i+2, row); err != nil {
				return err
			}
		}
	} else {
		for i, rec := range ledger.Records {
			row := make([]string, len(ledger.Columns))
			for j, col := range ledger.Columns {
				row[j] = rec.Get(col)
			}
			if err := setRow(f, i+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow[T any](f *excelize.File, row int, values []T) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(XLSXSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
