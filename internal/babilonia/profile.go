// Package babilonia implements the seven-stage wealth-building guide: the
// user profile, the gated stage chain, the score and its planning helpers.
package babilonia

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/textnorm"
)

// ErrUnknownField is returned by SetField for a name the profile doesn't have.
var ErrUnknownField = errors.New("unknown profile field")

// ExpenseKind separates needs from wants.
type ExpenseKind string

const (
	ExpenseNeed ExpenseKind = "Necessidade"
	ExpenseWant ExpenseKind = "Desejo"
)

var needKeywords = []string{
	"aluguel", "luz", "agua", "internet", "mercado",
	"farmacia", "transporte", "saude", "escola",
}

// ClassifyExpense labels a description as a need when it names an essential
// bill, otherwise as a want.
func ClassifyExpense(description string) ExpenseKind {
	if textnorm.ContainsAny(textnorm.Fold(description), needKeywords...) {
		return ExpenseNeed
	}
	return ExpenseWant
}

// ExpenseItem is a monthly cost listed in the expense-control stage.
type ExpenseItem struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Kind        ExpenseKind `json:"type"`
}

// NewExpenseItem builds a classified item with a fresh ID.
func NewExpenseItem(description string, amount float64) ExpenseItem {
	description = strings.TrimSpace(description)
	return ExpenseItem{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Kind:        ClassifyExpense(description),
	}
}

// Profile is the flat set of inputs driving stages and score.
type Profile struct {
	MonthlyIncome          float64       `json:"monthly_income"`
	CurrentSavings         float64       `json:"current_savings"`
	SavedMonthsConsistency float64       `json:"saved_months_consistency"`
	Expenses               []ExpenseItem `json:"expenses"`
	InvestedAmount         float64       `json:"invested_amount"`
	AnnualRate             float64       `json:"annual_rate"`
	InvestmentMonths       float64       `json:"investment_months"`
	EmergencyReserve       float64       `json:"emergency_reserve"`
	PropertyValue          float64       `json:"property_value"`
	DownPaymentTarget      float64       `json:"down_payment_target"`
	HousingDeadlineMonths  float64       `json:"housing_deadline_months"`
	CurrentAge             float64       `json:"current_age"`
	TargetAge              float64       `json:"target_age"`
	DesiredFutureIncome    float64       `json:"desired_future_income"`
	Skills                 string        `json:"skills"`
	FutureIncomeGoal       float64       `json:"future_income_goal"`
}

// ExpensesTotal sums the listed expense items.
func (p Profile) ExpensesTotal() float64 {
	var total float64
	for _, e := range p.Expenses {
		total += e.Amount
	}
	return total
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	out := p
	out.Expenses = append([]ExpenseItem(nil), p.Expenses...)
	return out
}

// numericFields maps the wire name of each numeric field to its storage.
func (p *Profile) numericFields() map[string]*float64 {
	return map[string]*float64{
		"monthly_income":           &p.MonthlyIncome,
		"current_savings":          &p.CurrentSavings,
		"saved_months_consistency": &p.SavedMonthsConsistency,
		"invested_amount":          &p.InvestedAmount,
		"annual_rate":              &p.AnnualRate,
		"investment_months":        &p.InvestmentMonths,
		"emergency_reserve":        &p.EmergencyReserve,
		"property_value":           &p.PropertyValue,
		"down_payment_target":      &p.DownPaymentTarget,
		"housing_deadline_months":  &p.HousingDeadlineMonths,
		"current_age":              &p.CurrentAge,
		"target_age":               &p.TargetAge,
		"desired_future_income":    &p.DesiredFutureIncome,
		"future_income_goal":       &p.FutureIncomeGoal,
	}
}

// SetField assigns a single field by its JSON name. Numeric input that
// cannot be parsed becomes 0.
func (p *Profile) SetField(name string, value any) error {
	if name == "skills" {
		p.Skills = stringValue(value)
		return nil
	}
	target, ok := p.numericFields()[name]
	if !ok {
		return fmt.Errorf("SetField: %q: %w", name, ErrUnknownField)
	}
	*target = coerceNumber(value)
	return nil
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func coerceNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return money.ParseNumber(v)
	default:
		return 0
	}
}
