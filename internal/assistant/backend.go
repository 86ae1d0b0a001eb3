package assistant

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Backend names accepted by NewCompleter.
const (
	BackendOllama    = "ollama"
	BackendGemini    = "gemini"
	BackendAnthropic = "anthropic"
	BackendNone      = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend         string
	OllamaURL       string
	OllamaModel     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	HTTPClient      *http.Client
}

// NewCompleter builds the configured backend with the given system prompt.
func NewCompleter(ctx context.Context, opts Options, system string) (Completer, error) {
	switch opts.Backend {
	case BackendOllama, "":
		return NewOllamaCompleter(opts.OllamaURL, opts.OllamaModel, system, opts.HTTPClient), nil
	case BackendGemini:
		c, err := NewGeminiCompleter(ctx, opts.GeminiAPIKey, opts.GeminiModel, system)
		if err != nil {
			return nil, fmt.Errorf("NewCompleter: %w", err)
		}
		return c, nil
	case BackendAnthropic:
		return NewAnthropicCompleter(opts.AnthropicAPIKey, opts.AnthropicModel, system), nil
	case BackendNone:
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("NewCompleter: unknown backend %q", opts.Backend)
	}
}

// NewChatCompleter builds the persona-bearing completer for free-text questions.
func NewChatCompleter(ctx context.Context, opts Options) (Completer, error) {
	return NewCompleter(ctx, opts, Persona)
}

// NewClassifier builds the LLM classifier. A positive cacheTTL puts a
// CachedClassifier in front of it.
func NewClassifier(ctx context.Context, opts Options, cacheTTL time.Duration) (Classifier, error) {
	c, err := NewCompleter(ctx, opts, classifierSystem)
	if err != nil {
		return nil, fmt.Errorf("NewClassifier: %w", err)
	}
	var classifier Classifier = NewLLMClassifier(c)
	if cacheTTL <= 0 {
		return classifier, nil
	}

	cached, err := NewCachedClassifier(classifier, cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("NewClassifier: %w", err)
	}
	return cached, nil
}

// Unavailable is the completer used when no backend is configured.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Stream(context.Context, string, func(string)) error {
	return ErrUnavailable
}
