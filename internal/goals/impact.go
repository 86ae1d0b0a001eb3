package goals

import (
	"fmt"
	"math"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// ImpactNote describes the balance after a new entry and how far the focus
// goal (goals[0]) still is from its target.
func ImpactNote(balanceBefore float64, tx domain.Transaction, goals []domain.Goal) string {
	line := fmt.Sprintf("Saldo apos o lancamento: %s.", money.FormatBRL(balanceBefore+tx.Signed()))
	if len(goals) == 0 {
		return line + " Sem metas ativas no momento."
	}

	focus := goals[0]
	saved := money.Round(float64(focus.Progress) / 100 * focus.Target)
	remaining := math.Max(focus.Target-saved, 0)
	return fmt.Sprintf("%s Meta em foco: %s com %d%% concluida. Faltam %s.",
		line, focus.Title, focus.Progress, money.FormatBRL(remaining))
}
