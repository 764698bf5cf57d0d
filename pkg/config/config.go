package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Import        ImportConfig
	Gemini        GeminiConfig
	Observability ObservabilityConfig
	Currency      string
	LogLevel      string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether insights should be requested from Gemini.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
	AllowedOrigins     []string
	ShutdownTimeout    time.Duration
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ImportConfig struct {
	SelfIdentity   string
	IDStrategy     string
	SheetName      string
	EuropeanFormat bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			MaxUploadBytes:     int64(getEnvAsInt("SERVER_MAX_UPLOAD_BYTES", 32<<20)),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Import: ImportConfig{
			SelfIdentity:   getEnv("SELF_IDENTITY", "DEEPAK"),
			IDStrategy:     getEnv("ID_STRATEGY", "random"),
			SheetName:      getEnv("SHEET_NAME", ""),
			EuropeanFormat: getEnvAsBool("EUROPEAN_FORMAT", false),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Currency: strings.ToUpper(getEnv("CURRENCY", "INR")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimitPerSecond <= 0 || c.Server.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit and burst must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("SERVER_MAX_UPLOAD_BYTES must be positive"))
	}
	if strings.TrimSpace(c.Import.SelfIdentity) == "" {
		errs = append(errs, errors.New("SELF_IDENTITY must not be blank"))
	}
	switch c.Import.IDStrategy {
	case "random", "sequential":
	default:
		errs = append(errs, fmt.Errorf("ID_STRATEGY must be random or sequential, got %q", c.Import.IDStrategy))
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("CURRENCY must be an ISO-4217 code, got %q", c.Currency))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
