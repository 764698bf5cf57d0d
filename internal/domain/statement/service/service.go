// Package service orchestrates one statement import: read the sheet once,
// detect its shape, normalize bank exports, derive insights and keep the
// latest result in memory.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sniffer"
)

var (
	// ErrEmptySheet means the sheet has no data rows at all.
	ErrEmptySheet = errors.New("the uploaded sheet has no data")
	// ErrSuperseded means a later upload finished first and this result was discarded.
	ErrSuperseded = errors.New("a newer upload replaced this one")
)

const tracerName = "github.com/FACorreiaa/statement-insights/internal/domain/statement/service"

// Result is what one successful import produces.
type Result struct {
	Ledger   *statement.Ledger `json:"ledger"`
	Insights insights.Insights `json:"insights"`
	Totals   insights.Totals   `json:"totals"`
	// InsightsError is set when insight generation failed; Insights is then empty.
	InsightsError string    `json:"insightsError,omitempty"`
	ImportedAt    time.Time `json:"importedAt"`
}

// Config tunes the service.
type Config struct {
	Read     sheet.ReadOptions
	Currency string
	// EuropeanFormat reads canonical ledger amounts as 1.234,56.
	EuropeanFormat bool
}

// Service imports statements and holds the current result.
type Service struct {
	normalizer *normalizer.Normalizer
	generator  insights.Generator
	config     Config
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer

	nextGen atomic.Uint64

	mu           sync.RWMutex
	current      *Result
	committedGen uint64
}

// Option customises a Service.
type Option func(*Service)

// WithMetrics records import metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New creates an import service.
func New(norm *normalizer.Normalizer, generator insights.Generator, config Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		normalizer: norm,
		generator:  generator,
		config:     config,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse reads a file into a ledger without generating insights or touching
// the stored result.
func (s *Service) Parse(ctx context.Context, filename string, r io.Reader) (*statement.Ledger, error) {
	_, span := s.tracer.Start(ctx, "statement.Parse", trace.WithAttributes(
		attribute.String("statement.filename", filename),
	))
	defer span.End()

	start := time.Now()
	ledger, err := s.parse(filename, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.observeParse(string(ledger.Shape), time.Since(start))
	span.SetAttributes(
		attribute.String("statement.shape", string(ledger.Shape)),
		attribute.Int("statement.rows", ledger.Len()),
		attribute.Int("statement.dropped_rows", ledger.DroppedRows),
	)
	return ledger, nil
}

func (s *Service) parse(filename string, r io.Reader) (*statement.Ledger, error) {
	sh, err := sheet.Read(filename, r, s.config.Read)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	detection := sniffer.Detect(sh.Rows)
	var ledger *statement.Ledger

	switch detection.Shape {
	case statement.ShapeEmpty:
		return nil, fmt.Errorf("read %s: %w", filename, ErrEmptySheet)

	case statement.ShapeCanonical:
		ledger = statement.NewCanonicalLedger(filename, detection.Header, detection.Records)
		ledger.Fingerprint = detection.Fingerprint
		ledger.DecimalComma = s.config.EuropeanFormat
		s.metrics.observeRows("passthrough", len(detection.Records))

	default:
		result, err := s.normalizer.Normalize(sh.Rows)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		ledger = statement.NewBankLedger(filename, result.Transactions, result.Dropped)
		ledger.Fingerprint = sniffer.Fingerprint(result.Header)
		s.metrics.observeRows("normalized", len(result.Transactions))
		s.metrics.observeRows("dropped", result.Dropped)
		s.metrics.observeRows("unknown", result.Unknown)
	}

	ledger.SheetName = sh.Name

	s.logger.Info("statement parsed",
		slog.String("filename", filename),
		slog.String("sheet", sh.Name),
		slog.String("shape", string(ledger.Shape)),
		slog.Int("rows", ledger.Len()),
		slog.Int("dropped", ledger.DroppedRows),
		slog.String("fingerprint", shortFingerprint(ledger.Fingerprint)),
	)
	return ledger, nil
}

// Import parses the file, generates insights and stores the result as current.
// On any parse failure the stored result is left untouched. If a later-started
// import has already been stored, the result is returned with ErrSuperseded.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	gen := s.nextGen.Add(1)

	ctx, span := s.tracer.Start(ctx, "statement.Import", trace.WithAttributes(
		attribute.String("statement.filename", filename),
		attribute.Int64("statement.generation", int64(gen)),
	))
	defer span.End()

	ledger, err := s.Parse(ctx, filename, r)
	if err != nil {
		s.metrics.observeImport(outcomeFor(err))
		s.logger.Warn("statement import failed",
			slog.String("filename", filename),
			slog.Any("error", err),
		)
		return nil, err
	}

	result := &Result{
		Ledger:     ledger,
		Totals:     insights.Summarize(ledger.Records, s.config.Currency, ledger.DecimalComma),
		ImportedAt: time.Now().UTC(),
	}

	result.Insights, err = s.generator.Generate(ctx, ledger)
	if err != nil {
		s.metrics.observeInsightsFailure()
		s.logger.Error("failed to generate insights",
			slog.String("filename", filename),
			slog.Any("error", err),
		)
		span.RecordError(err)
		result.Insights = insights.Empty()
		result.InsightsError = err.Error()
	}

	if !s.commit(gen, result) {
		s.metrics.observeImport(OutcomeSuperseded)
		s.logger.Info("statement import superseded",
			slog.String("filename", filename),
			slog.Uint64("generation", gen),
		)
		return result, ErrSuperseded
	}

	s.metrics.observeImport(OutcomeOK)
	return result, nil
}

// commit stores result unless a later-started import already has.
func (s *Service) commit(gen uint64, result *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.committedGen {
		return false
	}
	s.current = result
	s.committedGen = gen
	return true
}

// Current returns the most recently stored result.
func (s *Service) Current() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Reset discards the stored result and any import still in flight.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.committedGen = s.nextGen.Load() + 1
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrEmptySheet):
		return OutcomeEmpty
	case errors.Is(err, normalizer.ErrHeaderNotFound):
		return OutcomeHeaderNotFound
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return OutcomeUnsupported
	default:
		return OutcomeError
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
