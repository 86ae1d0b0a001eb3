// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/assistant"
)

// Default values.
const (
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultBackend           = "ollama"
	defaultOllamaURL         = "http://127.0.0.1:11434"
	defaultOllamaModel       = "llama3.1:8b"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultAnthropicModel    = "claude-sonnet-4-20250514"
	defaultClassifierEnabled = true
	defaultAssistantTimeout  = 30 * time.Second
	defaultClassifyTimeout   = 5 * time.Second
	defaultClassifyCacheTTL  = 10 * time.Minute
	defaultJobWorkers        = 5
	defaultJobBuffer         = 100
)

// Environment variable names.
const (
	envPort              = "PORT"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"
	envBackend           = "ASSISTANT_BACKEND"
	envOllamaURL         = "OLLAMA_URL"
	envOllamaModel       = "OLLAMA_MODEL"
	envGeminiAPIKey      = "GEMINI_API_KEY"
	envGeminiModel       = "GEMINI_MODEL"
	envAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	envAnthropicModel    = "ANTHROPIC_MODEL"
	envClassifierEnabled = "CLASSIFIER_ENABLED"
	envAssistantTimeout  = "ASSISTANT_TIMEOUT"
	envClassifyTimeout   = "CLASSIFY_TIMEOUT"
	envClassifyCacheTTL  = "CLASSIFY_CACHE_TTL"
	envJobWorkers        = "JOB_WORKERS"
	envJobBuffer         = "JOB_BUFFER"
	envReportBucket      = "REPORT_BUCKET"
	envCredentialsFile   = "GOOGLE_APPLICATION_CREDENTIALS"
)

var backends = []string{"ollama", "gemini", "anthropic", "none"}

// Config holds every runtime setting of the service and the CLI.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	Backend         string
	OllamaURL       string
	OllamaModel     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	ClassifierEnabled bool
	AssistantTimeout  time.Duration
	ClassifyTimeout   time.Duration
	ClassifyCacheTTL  time.Duration

	JobWorkers int
	JobBuffer  int

	// ReportBucket empty disables month-close export.
	ReportBucket    string
	CredentialsFile string
}

// LoadDotEnv loads the given .env files (".env" when none are given) into
// the process environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("LoadDotEnv: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from environment variables. Invalid values
// are logged and replaced by their defaults.
func Load(log zerolog.Logger) *Config {
	cfg := &Config{
		Port:      stringEnv(envPort, defaultPort),
		LogLevel:  stringEnv(envLogLevel, defaultLogLevel),
		LogFormat: stringEnv(envLogFormat, defaultLogFormat),

		OllamaURL:       stringEnv(envOllamaURL, defaultOllamaURL),
		OllamaModel:     stringEnv(envOllamaModel, defaultOllamaModel),
		GeminiAPIKey:    os.Getenv(envGeminiAPIKey),
		GeminiModel:     stringEnv(envGeminiModel, defaultGeminiModel),
		AnthropicAPIKey: os.Getenv(envAnthropicAPIKey),
		AnthropicModel:  stringEnv(envAnthropicModel, defaultAnthropicModel),

		ClassifierEnabled: boolEnv(log, envClassifierEnabled, defaultClassifierEnabled),
		AssistantTimeout:  durationEnv(log, envAssistantTimeout, defaultAssistantTimeout),
		ClassifyTimeout:   durationEnv(log, envClassifyTimeout, defaultClassifyTimeout),
		ClassifyCacheTTL:  durationEnv(log, envClassifyCacheTTL, defaultClassifyCacheTTL),

		JobWorkers: positiveIntEnv(log, envJobWorkers, defaultJobWorkers),
		JobBuffer:  positiveIntEnv(log, envJobBuffer, defaultJobBuffer),

		ReportBucket:    os.Getenv(envReportBucket),
		CredentialsFile: os.Getenv(envCredentialsFile),
	}

	cfg.Backend = strings.ToLower(stringEnv(envBackend, defaultBackend))
	if !validBackend(cfg.Backend) {
		log.Warn().
			Str("value", cfg.Backend).
			Str("default", defaultBackend).
			Msgf("Invalid value for %s, using default", envBackend)
		cfg.Backend = defaultBackend
	}

	return cfg
}

func validBackend(name string) bool {
	for _, b := range backends {
		if b == name {
			return true
		}
	}
	return false
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(log zerolog.Logger, key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn().Err(err).Str("value", raw).Bool("default", def).Msgf("Invalid value for %s, using default", key)
		return def
	}
	return v
}

func durationEnv(log zerolog.Logger, key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Warn().Err(err).Str("value", raw).Dur("default", def).Msgf("Invalid value for %s, using default", key)
		return def
	}
	return v
}

func positiveIntEnv(log zerolog.Logger, key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Warn().Err(err).Str("value", raw).Int("default", def).Msgf("Invalid value for %s, using default", key)
		return def
	}
	return v
}

// AssistantOptions returns the backend selection for the assistant package.
func (c *Config) AssistantOptions() assistant.Options {
	return assistant.Options{
		Backend:         c.Backend,
		OllamaURL:       c.OllamaURL,
		OllamaModel:     c.OllamaModel,
		GeminiAPIKey:    c.GeminiAPIKey,
		GeminiModel:     c.GeminiModel,
		AnthropicAPIKey: c.AnthropicAPIKey,
		AnthropicModel:  c.AnthropicModel,
	}
}
