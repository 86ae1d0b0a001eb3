package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiCompleter generates replies with the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiCompleter creates a Gemini client. An empty apiKey falls back to
// the GEMINI_API_KEY / GOOGLE_API_KEY variables read by the SDK.
func NewGeminiCompleter(ctx context.Context, apiKey, model, system string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiCompleter: create genai client: %w", err)
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	return &GeminiCompleter{client: client, model: model, config: cfg}, nil
}

// Complete returns the model's full reply.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("Complete: generate content: %w: %w", ErrUnavailable, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Complete: empty response from model: %w", ErrUnavailable)
	}
	return text, nil
}

// Stream forwards each partial response as it arrives.
func (g *GeminiCompleter) Stream(ctx context.Context, prompt string, onChunk func(string)) error {
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), g.config) {
		if err != nil {
			return fmt.Errorf("Stream: generate content: %w: %w", ErrUnavailable, err)
		}
		if text := resp.Text(); text != "" {
			onChunk(text)
		}
	}
	return nil
}
