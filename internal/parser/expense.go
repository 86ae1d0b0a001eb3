package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// DefaultDescription is used when the text has no "no/na/em/para" clause.
const DefaultDescription = "Lancamento rapido"

// ErrNoMatch means the text is not a transaction and should go to the assistant.
var ErrNoMatch = errors.New("text is not a transaction")

var descriptionPattern = regexp.MustCompile(`\b(?:no|na|em|para)\s+(.+)`)

// ExpenseParser turns chat text into a transaction candidate.
type ExpenseParser struct {
	classifier *Classifier
	now        func() time.Time
}

// NewExpenseParser creates a parser. A nil classifier uses DefaultRules.
func NewExpenseParser(classifier *Classifier, now func() time.Time) *ExpenseParser {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &ExpenseParser{classifier: classifier, now: now}
}

// Parse extracts amount, category and description from text. It fails with
// ErrNoMatch exactly when no usable amount is present.
func (p *ExpenseParser) Parse(text string) (domain.Transaction, error) {
	amount, err := money.ExtractAmount(text)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %w", ErrNoMatch, err)
	}
	value := amount.Float()
	if value <= 0 {
		return domain.Transaction{}, fmt.Errorf("%w: amount must be positive", ErrNoMatch)
	}

	class := p.classifier.Classify(text)
	return domain.NewTransaction(value, class.Category, ExtractDescription(text), class.Kind, p.now()), nil
}

// Classifier exposes the rule table used by the parser.
func (p *ExpenseParser) Classifier() *Classifier {
	return p.classifier
}

// ExtractDescription returns the clause after no/na/em/para, or the default.
func ExtractDescription(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	m := descriptionPattern.FindStringSubmatch(lower)
	if len(m) < 2 {
		return DefaultDescription
	}
	desc := strings.TrimSpace(m[1])
	if desc == "" {
		return DefaultDescription
	}
	return desc
}

// WithCategory re-labels tx with an externally suggested category and
// re-derives its kind from it.
func WithCategory(tx domain.Transaction, category string) domain.Transaction {
	tx.Category = category
	tx.Kind = domain.KindForCategory(category)
	return tx
}
