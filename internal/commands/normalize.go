package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
)

func newNormalizeCommand() *cobra.Command {
	var opts importOptions
	var format string

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Convert a statement into canonical transactions",
		Long: "Reads an .xlsx or .csv statement. Bank statements are located by their " +
			"Description / Debit Amount / Credit Amount header and rewritten as canonical " +
			"transactions; sheets already in the canonical layout pass through unchanged.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "json", "csv", "xlsx":
			default:
				return fmt.Errorf("unknown format %q, use json, csv or xlsx", format)
			}
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)

			svc, err := newService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer file.Close()

			ledger, err := svc.Parse(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}

			w, closeOut, err := opts.writer(cmd)
			if err != nil {
				return err
			}
			switch format {
			case "csv":
				err = statement.WriteCSV(w, ledger)
			case "xlsx":
				err = statement.WriteXLSX(w, ledger)
			default:
				err = writeJSON(w, ledger)
			}
			if err = errors.Join(err, closeOut()); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			logger.Debug("statement normalized",
				slog.String("shape", string(ledger.Shape)),
				slog.Int("rows", ledger.Len()),
				slog.Int("dropped", ledger.DroppedRows),
			)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, csv or xlsx")

	return cmd
}
