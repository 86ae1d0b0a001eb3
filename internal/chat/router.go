// Package chat turns user messages into ledger and goal commands and
// assistant replies.
package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/finance-chat/internal/goals"
	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/textnorm"
)

// Intent is the branch a message is dispatched to. The order of the
// constants is the evaluation order; the first match wins.
type Intent int

const (
	IntentGoalDeposit Intent = iota + 1
	IntentUndoLast
	IntentCorrectLast
	IntentSummary
	IntentRecent
	IntentLeaks
	IntentScenario
	IntentScenarioQuestion
	IntentGoal
	IntentTransaction
)

var intentNames = map[Intent]string{
	IntentGoalDeposit:      "goal_deposit",
	IntentUndoLast:         "undo_last",
	IntentCorrectLast:      "correct_last",
	IntentSummary:          "summary",
	IntentRecent:           "recent",
	IntentLeaks:            "leaks",
	IntentScenario:         "scenario",
	IntentScenarioQuestion: "scenario_question",
	IntentGoal:             "goal",
	IntentTransaction:      "transaction",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

const number = `(\d+(?:\.\d+)?(?:,\d+)?)`

var (
	correctPattern  = regexp.MustCompile(`corrigir valor\s*` + number)
	scenarioPattern = regexp.MustCompile(`(?:reduzir|economizar)\s*` + number)

	scenarioQuestions = []string{
		"e se eu reduzir",
		"e se reduzir",
		"e se economizar",
		"reduzir por mes",
		"economizar por mes",
	}
)

// Match is the routing decision for one message together with whatever the
// winning branch already extracted.
type Match struct {
	Intent  Intent
	Text    string // trimmed input
	Folded  string // lower-case, accent-free input
	Amount  money.Amount
	Deposit goals.DepositRequest
	// AmountErr is set when a branch matched but its number didn't parse.
	AmountErr error
}

// Route picks the branch for text. Transactions are the catch-all; the
// parser decides later whether the text really is one.
func Route(text string) Match {
	m := Match{Text: strings.TrimSpace(text)}
	m.Folded = textnorm.Fold(m.Text)
	f := m.Folded

	if req, ok := goals.ParseDeposit(m.Text); ok {
		m.Intent = IntentGoalDeposit
		m.Deposit = req
		return m
	}
	if strings.Contains(f, "desfazer ultimo") {
		m.Intent = IntentUndoLast
		return m
	}
	if sub := correctPattern.FindStringSubmatch(f); sub != nil {
		m.Intent = IntentCorrectLast
		m.Amount, m.AmountErr = positiveAmount(sub[1])
		return m
	}
	if strings.Contains(f, "resumo") {
		m.Intent = IntentSummary
		return m
	}
	if strings.Contains(f, "ultimos lancamentos") {
		m.Intent = IntentRecent
		return m
	}
	if strings.Contains(f, "gastos invisiveis") {
		m.Intent = IntentLeaks
		return m
	}
	if sub := scenarioPattern.FindStringSubmatch(f); sub != nil && strings.Contains(f, "mes") {
		m.Intent = IntentScenario
		m.Amount, m.AmountErr = money.ExtractAmount(sub[1])
		return m
	}
	if textnorm.ContainsAny(f, scenarioQuestions...) {
		m.Intent = IntentScenarioQuestion
		return m
	}
	if goals.IsGoalIntent(m.Text) {
		m.Intent = IntentGoal
		return m
	}
	m.Intent = IntentTransaction
	return m
}

// positiveAmount extracts an amount and rejects zero, since ledger entries
// always carry a positive value.
func positiveAmount(text string) (money.Amount, error) {
	a, err := money.ExtractAmount(text)
	if err != nil {
		return money.Amount{}, err
	}
	if a.Float() <= 0 {
		return money.Amount{}, fmt.Errorf("%q: %w", a.Token, money.ErrNoAmount)
	}
	return a, nil
}
