package parser

import (
	"strings"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/textnorm"
)

// Rule maps a category to the keywords that select it.
// Rules are evaluated in slice order and the first hit wins, so the order
// of DefaultRules is part of the observable behaviour.
type Rule struct {
	Category string
	Keywords []string
}

// Matches reports whether folded text contains one of the rule keywords.
func (r Rule) Matches(folded string) bool {
	return textnorm.ContainsAny(folded, r.Keywords...)
}

// DefaultRules is the built-in keyword table.
var DefaultRules = []Rule{
	{Category: "Alimentacao", Keywords: []string{"restaurante", "lanche", "ifood", "comida", "mercado", "padaria"}},
	{Category: "Transporte", Keywords: []string{"uber", "taxi", "onibus", "metro", "combustivel", "gasolina"}},
	{Category: "Moradia", Keywords: []string{"aluguel", "condominio", "luz", "energia", "agua", "internet"}},
	{Category: "Saude", Keywords: []string{"farmacia", "medico", "consulta", "academia"}},
	{Category: "Lazer", Keywords: []string{"cinema", "viagem", "show", "jogo", "bar", "cafe"}},
	{Category: "Compras", Keywords: []string{"roupa", "loja", "shopping", "eletronico", "presente"}},
	{Category: domain.CategoryGoals, Keywords: []string{"meta", "aporte"}},
	{Category: domain.CategoryIncome, Keywords: []string{"salario", "freela", "bonus", "pix", "recebi", "ganhei"}},
}

// Classification is the outcome of the keyword lookup.
type Classification struct {
	Category string
	Kind     domain.Kind
}

// Classifier assigns a category to free text using an ordered rule list.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier; nil rules selects DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the first matching category, or Outros.
func (c *Classifier) Classify(text string) Classification {
	folded := textnorm.Fold(text)
	for _, rule := range c.rules {
		if rule.Matches(folded) {
			return Classification{Category: rule.Category, Kind: domain.KindForCategory(rule.Category)}
		}
	}
	return Classification{Category: domain.CategoryOther, Kind: domain.KindExpense}
}

// Categories returns the category names in rule order followed by Outros.
func (c *Classifier) Categories() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		out = append(out, rule.Category)
	}
	return append(out, domain.CategoryOther)
}

// IsKnownCategory reports whether name is one of the classifier categories,
// ignoring case and surrounding whitespace.
func (c *Classifier) IsKnownCategory(name string) bool {
	name = strings.TrimSpace(name)
	for _, cat := range c.Categories() {
		if strings.EqualFold(cat, name) {
			return true
		}
	}
	return false
}
