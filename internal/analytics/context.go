package analytics

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// ContextSummary renders the financial context prepended to assistant
// prompts. Entries are newest-first; goals[0] is the goal in focus.
func ContextSummary(entries []domain.Transaction, goals []domain.Goal) string {
	totals := ComputeTotals(entries)
	top, _ := TopCategory(entries)

	parts := []string{
		"Saldo " + money.FormatBRL(totals.Balance),
		"Gastos " + money.FormatBRL(totals.Spent),
		"Entradas " + money.FormatBRL(totals.Income),
		"Top: " + top,
	}
	if len(goals) > 0 {
		parts = append(parts, fmt.Sprintf("Meta: %s %d%%", goals[0].Title, goals[0].Progress))
	}

	recent := make([]string, 0, 3)
	for i, tx := range entries {
		if i == 3 {
			break
		}
		recent = append(recent, tx.Description)
	}
	if len(recent) > 0 {
		parts = append(parts, "Recentes: "+strings.Join(recent, ", "))
	}
	return strings.Join(parts, ". ")
}

// AssistantPrompt wraps a user question with the context summary.
func AssistantPrompt(summary, question string) string {
	return fmt.Sprintf("Contexto: %s. Pergunta: %s", summary, question)
}
