package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/handler"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
	"github.com/FACorreiaa/statement-insights/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Services
	Metrics          *service.Metrics
	Normalizer       *normalizer.Normalizer
	Insights         insights.Generator
	StatementService *service.Service

	// Handlers
	StatementHandler *handler.StatementHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initMetrics creates the registry served on /metrics
func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = service.NewMetrics(d.Registry)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	d.Normalizer = normalizer.New(normalizer.Config{
		SelfIdentity:   d.Config.Import.SelfIdentity,
		EuropeanFormat: d.Config.Import.EuropeanFormat,
		IDStrategy:     d.Config.Import.IDStrategy,
	})

	generator, err := insights.NewGenerator(ctx, insights.GeminiConfig{
		APIKey:  d.Config.Gemini.APIKey,
		Model:   d.Config.Gemini.Model,
		Timeout: d.Config.Gemini.Timeout,
	}, d.Config.Currency, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to init insights: %w", err)
	}
	d.Insights = generator

	opts := []service.Option{}
	if d.Metrics != nil {
		opts = append(opts, service.WithMetrics(d.Metrics))
	}
	d.StatementService = service.New(d.Normalizer, d.Insights, service.Config{
		Read:           sheet.ReadOptions{SheetName: d.Config.Import.SheetName},
		Currency:       d.Config.Currency,
		EuropeanFormat: d.Config.Import.EuropeanFormat,
	}, d.Logger, opts...)

	d.Logger.Info("services initialized",
		slog.String("self_identity", d.Normalizer.SelfIdentity()),
		slog.String("id_strategy", d.Config.Import.IDStrategy),
		slog.Bool("gemini", d.Config.Gemini.Enabled()),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.StatementHandler = handler.NewStatementHandler(d.StatementService, d.Logger, d.Config.Server.MaxUploadBytes)
	d.Logger.Info("handlers initialized")
}
