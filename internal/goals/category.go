package goals

import (
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/textnorm"
)

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is kept apart from the expense keyword table on purpose:
// the two vocabularies overlap but evolve independently. First hit wins.
var categoryRules = []categoryRule{
	{domain.GoalTravel, []string{"viagem", "viajar"}},
	{domain.GoalEmergency, []string{"reserva", "emergencia"}},
	{domain.GoalEducation, []string{"curso", "faculdade", "educacao"}},
	{domain.GoalHome, []string{"casa", "imovel", "apartamento"}},
	{domain.GoalCar, []string{"carro", "veiculo"}},
	{domain.GoalHealth, []string{"saude", "medico", "consulta"}},
	{domain.GoalInvestment, []string{"investir", "investimento"}},
}

// InferCategory picks the goal category for free text, defaulting to Outros.
func InferCategory(text string) string {
	folded := textnorm.Fold(text)
	for _, rule := range categoryRules {
		if textnorm.ContainsAny(folded, rule.keywords...) {
			return rule.category
		}
	}
	return domain.GoalOther
}
