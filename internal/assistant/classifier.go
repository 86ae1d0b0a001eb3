package assistant

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/dvloznov/finance-chat/internal/textnorm"
)

// LLMClassifier asks a completer for a category and accepts only exact
// matches from Categories.
type LLMClassifier struct {
	completer Completer
}

// NewLLMClassifier wraps a completer configured without the chat persona.
func NewLLMClassifier(c Completer) *LLMClassifier {
	return &LLMClassifier{completer: c}
}

// Classify returns a category name or ErrNoSuggestion.
func (l *LLMClassifier) Classify(ctx context.Context, text string) (string, error) {
	raw, err := l.completer.Complete(ctx, ClassificationPrompt(text))
	if err != nil {
		return "", fmt.Errorf("Classify: %w", err)
	}
	category, ok := MatchCategory(raw)
	if !ok {
		return "", fmt.Errorf("Classify: answer %q: %w", raw, ErrNoSuggestion)
	}
	return category, nil
}

// CachedClassifier memoizes successful classifications by folded text.
type CachedClassifier struct {
	next  Classifier
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedClassifier creates a cache in front of next. Entries expire after ttl.
func NewCachedClassifier(next Classifier, ttl time.Duration) (*CachedClassifier, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("NewCachedClassifier: create cache: %w", err)
	}
	return &CachedClassifier{next: next, cache: cache, ttl: ttl}, nil
}

// Classify serves from the cache when possible. Failures are not cached.
func (c *CachedClassifier) Classify(ctx context.Context, text string) (string, error) {
	key := textnorm.Fold(text)
	if v, ok := c.cache.Get(key); ok {
		if category, ok := v.(string); ok {
			return category, nil
		}
	}

	category, err := c.next.Classify(ctx, text)
	if err != nil {
		return "", err
	}
	c.cache.SetWithTTL(key, category, 1, c.ttl)
	c.cache.Wait()
	return category, nil
}

// Close releases the cache goroutines.
func (c *CachedClassifier) Close() error {
	c.cache.Close()
	return nil
}

var _ io.Closer = (*CachedClassifier)(nil)
