package goals

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// PlanMonths is the fixed horizon of a contribution plan.
const PlanMonths = 6

// Plan is the contribution schedule offered after a goal is confirmed.
type Plan struct {
	GoalID  string        `json:"goal_id"`
	Months  int           `json:"months"`
	Monthly float64       `json:"monthly"`
	Text    string        `json:"text"`
	Action  domain.Action `json:"action"`
}

// BuildPlan spreads the target over PlanMonths, rounding the monthly
// contribution up.
func BuildPlan(g domain.Goal) Plan {
	monthly := math.Ceil(g.Target / PlanMonths)
	text := strings.Join([]string{
		"## Plano automatico para " + g.Title,
		fmt.Sprintf("Meta total %s em %d meses.", money.FormatBRL(g.Target), PlanMonths),
		"",
		fmt.Sprintf("1. Separe %s por mes como prioridade fixa.", money.FormatBRL(monthly)),
		"2. Direcione ganhos extras para acelerar a meta.",
		"3. Revise gastos variaveis toda semana e realoque o excedente.",
		"",
		"[DICA] Comece com um valor simples e aumente se sobrar.",
		"[PASSO] Quer que eu registre um aporte inicial agora?",
	}, "\n")

	return Plan{
		GoalID:  g.ID,
		Months:  PlanMonths,
		Monthly: monthly,
		Text:    text,
		Action:  domain.Action{Label: "Proximo passo", Kind: domain.ActionInitGoalDeposit, GoalID: g.ID},
	}
}

// DepositSuggestion is the input pre-filled by the init-goal-deposit action.
func DepositSuggestion(title string) string {
	if title == "" {
		return "adicione 100 na meta"
	}
	return "adicione 100 na meta " + title
}
