package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInsightsCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "insights <file>",
		Short: "Normalize a statement and generate spending insights",
		Long: "Prints the normalized ledger, totals and insights as JSON. Insights come " +
			"from Gemini when GEMINI_API_KEY is set and are computed locally otherwise.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := svc.Import(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			if result.InsightsError != "" {
				logger.Warn("insights unavailable", slog.String("error", result.InsightsError))
			}

			w, closeOut, err := opts.writer(cmd)
			if err != nil {
				return err
			}
			if err := errors.Join(writeJSON(w, result), closeOut()); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	opts.bind(cmd)

	return cmd
}
