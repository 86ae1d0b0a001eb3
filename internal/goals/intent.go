// Package goals detects goal intents, builds contribution plans and
// applies deposits to tracked goals.
package goals

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/textnorm"
)

// DefaultTitle names a goal when the text gives no title.
const DefaultTitle = "Meta pessoal"

var intentKeywords = []string{"guardar", "investir", "meta", "objetivo", "pagar", "divida"}

var (
	titlePattern     = regexp.MustCompile(`(?i)(?:guardar|economizar|meta|objetivo|pagar)\s+(.*)`)
	leadingConnector = regexp.MustCompile(`(?i)^(?:para|pra|de|do|da|na|no|a|o)\s+`)
	spaces           = regexp.MustCompile(`\s+`)
)

// IsGoalIntent reports whether text talks about saving, investing or paying
// something off.
func IsGoalIntent(text string) bool {
	return textnorm.ContainsAny(textnorm.Fold(text), intentKeywords...)
}

// NewDraft proposes a goal from text. It fails with money.ErrNoAmount when
// the text has no positive target value.
func NewDraft(text string) (domain.GoalDraft, error) {
	amount, err := money.ExtractAmount(text)
	if err != nil {
		return domain.GoalDraft{}, fmt.Errorf("NewDraft: %w", err)
	}
	if amount.Float() <= 0 {
		return domain.GoalDraft{}, fmt.Errorf("NewDraft: %q: %w", amount.Token, money.ErrNoAmount)
	}
	return domain.GoalDraft{
		ID:       uuid.New().String(),
		Title:    ExtractTitle(text, amount.Token),
		Category: InferCategory(text),
		Target:   amount.Float(),
	}, nil
}

// ExtractTitle takes the words after the goal verb, drops the amount token
// and any leading connector ("para viagem" becomes "viagem").
func ExtractTitle(text, amountToken string) string {
	m := titlePattern.FindStringSubmatch(strings.TrimSpace(text))
	if len(m) < 2 {
		return DefaultTitle
	}
	title := m[1]
	if amountToken != "" {
		title = strings.Replace(title, amountToken, "", 1)
	}
	if title = cleanName(title); title == "" {
		return DefaultTitle
	}
	return title
}

// cleanName collapses whitespace and strips leading connectors.
func cleanName(s string) string {
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	for {
		trimmed := leadingConnector.ReplaceAllString(s, "")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
