package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
	"github.com/FACorreiaa/statement-insights/pkg/config"
)

// importOptions are the flags shared by every command that reads a statement.
type importOptions struct {
	self     string
	ids      string
	sheet    string
	european bool
	output   string
	verbose  bool
}

func (o *importOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.self, "self", "", "account holder name (default $SELF_IDENTITY or DEEPAK)")
	f.StringVar(&o.ids, "ids", "", "transaction id strategy: random or sequential")
	f.StringVar(&o.sheet, "sheet", "", "worksheet to read (default: first sheet)")
	f.BoolVar(&o.european, "european", false, "parse amounts written as 1.234,56")
	f.StringVarP(&o.output, "output", "o", "", "write to a file instead of stdout")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log progress to stderr")
}

// resolve loads environment configuration and applies explicitly set flags on top.
func (o *importOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("self") {
		cfg.Import.SelfIdentity = o.self
	}
	if f.Changed("ids") {
		cfg.Import.IDStrategy = o.ids
	}
	if f.Changed("sheet") {
		cfg.Import.SheetName = o.sheet
	}
	if f.Changed("european") {
		cfg.Import.EuropeanFormat = o.european
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *importOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// writer returns stdout or the --output file along with its close func.
func (o *importOptions) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if o.output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(o.output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", o.output, err)
	}
	return f, f.Close, nil
}

func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.Service, error) {
	norm := normalizer.New(normalizer.Config{
		SelfIdentity:   cfg.Import.SelfIdentity,
		EuropeanFormat: cfg.Import.EuropeanFormat,
		IDStrategy:     cfg.Import.IDStrategy,
	})

	generator, err := insights.NewGenerator(ctx, insights.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, cfg.Currency, logger)
	if err != nil {
		return nil, err
	}

	return service.New(norm, generator, service.Config{
		Read:           sheet.ReadOptions{SheetName: cfg.Import.SheetName},
		Currency:       cfg.Currency,
		EuropeanFormat: cfg.Import.EuropeanFormat,
	}, logger), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
