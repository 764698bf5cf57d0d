package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// ContentGenerator is the slice of the genai client the generator needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures the Gemini-backed generator.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiGenerator asks a Gemini model for insights.
type GeminiGenerator struct {
	models  ContentGenerator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiGenerator creates a generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return NewGeminiGeneratorWithClient(client.Models, cfg.Model, cfg.Timeout, logger), nil
}

// NewGenerator returns a Gemini generator when cfg carries an API key and the
// offline LocalGenerator otherwise.
func NewGenerator(ctx context.Context, cfg GeminiConfig, currency string, logger *slog.Logger) (Generator, error) {
	if cfg.APIKey == "" {
		return NewLocalGenerator(currency, logger), nil
	}
	return NewGeminiGenerator(ctx, cfg, logger)
}

// NewGeminiGeneratorWithClient wires an existing content generator.
func NewGeminiGeneratorWithClient(models ContentGenerator, model string, timeout time.Duration, logger *slog.Logger) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiGenerator{
		models:  models,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate implements Generator. Transport failures are returned; a response
// that cannot be decoded is logged and yields empty insights.
func (g *GeminiGenerator) Generate(ctx context.Context, ledger *statement.Ledger) (Insights, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(EncodeCSV(ledger.Columns, ledger.Records))
	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Empty(), fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	out, err := Decode(text)
	if err != nil {
		g.logger.Warn("failed to parse model response",
			slog.String("model", g.model),
			slog.Any("error", err),
			slog.Int("response_len", len(text)),
		)
		return Empty(), nil
	}

	g.logger.Debug("insights generated",
		slog.String("model", g.model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("rows", ledger.Len()),
	)
	return out, nil
}
