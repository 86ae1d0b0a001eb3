package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockCompleter is a Completer whose behaviour is set per test.
type mockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	StreamFunc   func(ctx context.Context, prompt string, onChunk func(string)) error
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

func (m *mockCompleter) Stream(ctx context.Context, prompt string, onChunk func(string)) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, prompt, onChunk)
	}
	return nil
}

// mockClassifier counts calls.
type mockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string) (string, error)
	calls        atomic.Int32
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (string, error) {
	m.calls.Add(1)
	return m.ClassifyFunc(ctx, text)
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "Alimentacao", want: "Alimentacao", wantOK: true},
		{raw: "  alimentação.\n", want: "Alimentacao", wantOK: true},
		{raw: "**Transporte**", want: "Transporte", wantOK: true},
		{raw: "Saúde", want: "Saude", wantOK: true},
		{raw: "Categoria: Lazer", wantOK: false},
		{raw: "", wantOK: false},
		{raw: "Viagem", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := MatchCategory(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchCategory(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassificationPrompt(t *testing.T) {
	got := ClassificationPrompt("  uber 30 ")
	if !strings.HasSuffix(got, "Texto: uber 30") {
		t.Errorf("prompt suffix = %q", got)
	}
	if !strings.Contains(got, "Alimentacao, Transporte, Moradia, Saude, Lazer, Compras, Receita, Outros") {
		t.Errorf("prompt does not list categories: %q", got)
	}
}

func TestLLMClassifier(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		c := NewLLMClassifier(&mockCompleter{CompleteFunc: func(_ context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "padaria") {
				t.Errorf("prompt missing text: %q", prompt)
			}
			return "Alimentação", nil
		}})
		got, err := c.Classify(context.Background(), "padaria 20")
		if err != nil || got != "Alimentacao" {
			t.Errorf("Classify = %q, %v", got, err)
		}
	})

	t.Run("unknown answer", func(t *testing.T) {
		c := NewLLMClassifier(&mockCompleter{CompleteFunc: func(context.Context, string) (string, error) {
			return "Nao sei", nil
		}})
		if _, err := c.Classify(context.Background(), "x"); !errors.Is(err, ErrNoSuggestion) {
			t.Errorf("err = %v, want ErrNoSuggestion", err)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		c := NewLLMClassifier(Unavailable{})
		if _, err := c.Classify(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
			t.Errorf("err = %v, want ErrUnavailable", err)
		}
	})
}

func TestNewClassifier_Closer(t *testing.T) {
	opts := Options{Backend: BackendOllama, OllamaURL: "http://127.0.0.1:1", OllamaModel: "test"}

	cached, err := NewClassifier(context.Background(), opts, time.Minute)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	closer, ok := cached.(io.Closer)
	if !ok {
		t.Fatalf("%T does not implement io.Closer", cached)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	plain, err := NewClassifier(context.Background(), opts, 0)
	if err != nil {
		t.Fatalf("NewClassifier without cache: %v", err)
	}
	if _, ok := plain.(io.Closer); ok {
		t.Errorf("%T should not need closing", plain)
	}
}

func TestCachedClassifier(t *testing.T) {
	next := &mockClassifier{ClassifyFunc: func(_ context.Context, text string) (string, error) {
		if strings.Contains(text, "erro") {
			return "", ErrNoSuggestion
		}
		return "Transporte", nil
	}}
	c, err := NewCachedClassifier(next, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedClassifier: %v", err)
	}
	defer c.Close()

	for _, in := range []string{"Uber 30", "uber 30", "  UBER 30 "} {
		got, err := c.Classify(context.Background(), in)
		if err != nil || got != "Transporte" {
			t.Fatalf("Classify(%q) = %q, %v", in, got, err)
		}
	}
	if n := next.calls.Load(); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.Classify(context.Background(), "erro"); !errors.Is(err, ErrNoSuggestion) {
			t.Errorf("err = %v", err)
		}
	}
	if n := next.calls.Load(); n != 3 {
		t.Errorf("failures should not be cached, calls = %d", n)
	}
}

func TestOllamaCompleter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Stream || req.Model != "llama3" || req.System != "sys" || req.Options.NumCtx != 2048 {
			t.Errorf("unexpected body %+v", req)
		}
		fmt.Fprint(w, `{"response":"  Ola! \n","done":true}`)
	}))
	defer srv.Close()

	c := NewOllamaCompleter(srv.URL+"/", "llama3", "sys", srv.Client())
	got, err := c.Complete(context.Background(), "oi")
	if err != nil || got != "Ola!" {
		t.Errorf("Complete = %q, %v", got, err)
	}
}

func TestOllamaCompleter_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"Ola","done":false}`)
		fmt.Fprintln(w, `not json`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"response":", tudo","done":false}`)
		fmt.Fprintln(w, `{"response":" bem","done":true}`)
		fmt.Fprintln(w, `{"response":" ignorado","done":false}`)
	}))
	defer srv.Close()

	var chunks []string
	c := NewOllamaCompleter(srv.URL, "m", "", nil)
	if err := c.Stream(context.Background(), "oi", func(s string) { chunks = append(chunks, s) }); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got := strings.Join(chunks, ""); got != "Ola, tudo bem" {
		t.Errorf("streamed %q", got)
	}
}

func TestOllamaCompleter_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOllamaCompleter(srv.URL, "m", "", nil)
	if _, err := c.Complete(context.Background(), "oi"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Complete err = %v, want ErrUnavailable", err)
	}
	if err := c.Stream(context.Background(), "oi", func(string) {}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Stream err = %v, want ErrUnavailable", err)
	}

	down := NewOllamaCompleter("http://127.0.0.1:1", "m", "", nil)
	if _, err := down.Complete(context.Background(), "oi"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("unreachable err = %v, want ErrUnavailable", err)
	}
}

func TestRequest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := Start(context.Background(), time.Second, func(context.Context) (string, error) {
			return "ok", nil
		})
		got, err := r.Wait()
		if err != nil || got != "ok" {
			t.Errorf("Wait = %q, %v", got, err)
		}
		select {
		case <-r.Done():
		default:
			t.Error("Done not closed after Wait")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		r := Start(context.Background(), 10*time.Millisecond, func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		if _, err := r.Wait(); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		started := make(chan struct{})
		r := Start(context.Background(), 0, func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})
		<-started
		r.Cancel()
		if _, err := r.Wait(); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want Canceled", err)
		}
	})
}

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()
	c, err := NewCompleter(ctx, Options{Backend: BackendOllama, OllamaURL: "http://x"}, "")
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, ok := c.(*OllamaCompleter); !ok {
		t.Errorf("ollama backend = %T", c)
	}

	c, err = NewCompleter(ctx, Options{Backend: BackendNone}, "")
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if err := c.Stream(ctx, "x", func(string) {}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("none Stream err = %v", err)
	}

	if _, err := NewCompleter(ctx, Options{Backend: "bogus"}, ""); err == nil {
		t.Error("expected error for unknown backend")
	}

	a, err := NewCompleter(ctx, Options{Backend: BackendAnthropic, AnthropicAPIKey: "k", AnthropicModel: "m"}, Persona)
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if _, ok := a.(*AnthropicCompleter); !ok {
		t.Errorf("anthropic backend = %T", a)
	}
}
