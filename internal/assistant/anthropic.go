package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 1024

// AnthropicCompleter generates replies with the Anthropic Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
	system string
}

// NewAnthropicCompleter creates a client. An empty apiKey falls back to
// ANTHROPIC_API_KEY, which the SDK reads on its own.
func NewAnthropicCompleter(apiKey, model, system string) *AnthropicCompleter {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicCompleter{
		client: anthropic.NewClient(opts...),
		model:  model,
		system: system,
	}
}

func (a *AnthropicCompleter) params(prompt string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.system}}
	}
	return params
}

// Complete returns the concatenated text blocks of the reply.
func (a *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, a.params(prompt))
	if err != nil {
		return "", fmt.Errorf("Complete: create message: %w: %w", ErrUnavailable, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("Complete: empty response from model: %w", ErrUnavailable)
	}
	return text, nil
}

// Stream forwards text deltas until the message stops.
func (a *AnthropicCompleter) Stream(ctx context.Context, prompt string, onChunk func(string)) error {
	stream := a.client.Messages.NewStreaming(ctx, a.params(prompt))
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text != "" {
					onChunk(delta.Text)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("Stream: %w: %w", ErrUnavailable, err)
	}
	return nil
}
