package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaOptions are the sampling options sent with every request.
type OllamaOptions struct {
	NumCtx      int     `json:"num_ctx"`
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

// DefaultOllamaOptions keeps replies short on small local models.
var DefaultOllamaOptions = OllamaOptions{NumCtx: 2048, NumPredict: 256, Temperature: 0.7}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options OllamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaCompleter calls a local Ollama server through /api/generate.
type OllamaCompleter struct {
	baseURL string
	model   string
	system  string
	options OllamaOptions
	client  *http.Client
}

// NewOllamaCompleter creates a completer for the given server and model.
// A nil client uses http.DefaultClient; deadlines come from the context.
func NewOllamaCompleter(baseURL, model, system string, client *http.Client) *OllamaCompleter {
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaCompleter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		system:  system,
		options: DefaultOllamaOptions,
		client:  client,
	}
}

// Complete sends a non-streaming request and returns the trimmed reply.
func (o *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.post(ctx, prompt, false)
	if err != nil {
		return "", fmt.Errorf("Complete: %w", err)
	}
	defer resp.Body.Close()

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("Complete: decode response: %w: %w", ErrUnavailable, err)
	}
	return strings.TrimSpace(out.Response), nil
}

// Stream reads the NDJSON body line by line until the done marker.
// Lines that fail to decode are skipped.
func (o *OllamaCompleter) Stream(ctx context.Context, prompt string, onChunk func(string)) error {
	resp, err := o.post(ctx, prompt, true)
	if err != nil {
		return fmt.Errorf("Stream: %w", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Response != "" {
			onChunk(chunk.Response)
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("Stream: read body: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (o *OllamaCompleter) post(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   o.model,
		Prompt:  prompt,
		System:  o.system,
		Stream:  stream,
		Options: o.options,
	})
	if err != nil {
		return nil, fmt.Errorf("post: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("post: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("post: status %d: %w", resp.StatusCode, ErrUnavailable)
	}
	return resp, nil
}
