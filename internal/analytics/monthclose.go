package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// MonthStatus is the month-close tier.
type MonthStatus string

const (
	MonthExcellent MonthStatus = "excellent"
	MonthGood      MonthStatus = "good"
	MonthCaution   MonthStatus = "caution"
	MonthCritical  MonthStatus = "critical"
)

// Label returns the pt-BR name shown to the user.
func (s MonthStatus) Label() string {
	switch s {
	case MonthExcellent:
		return "excelente"
	case MonthGood:
		return "bom"
	case MonthCaution:
		return "atencao"
	default:
		return "critico"
	}
}

// Month-close advisory texts, in the order they can appear.
const (
	StepNegativeBalance = "Rever gastos variaveis para voltar ao saldo positivo."
	StepGoalContrib     = "Definir um aporte semanal para a meta principal."
	StepNoIncome        = "Registrar entradas para medir o fluxo real do mes."
	StepKeepPace        = "Siga no ritmo atual e revise o mes na proxima semana."

	WarningOverspent = "Gastos acima das entradas neste mes."
	WarningOK        = "Gastos sob controle no periodo."
)

// MonthCloseInput carries the aggregates the scorer needs.
type MonthCloseInput struct {
	Totals          Totals
	AvgGoalProgress int
	GoalCount       int
	Leaks           []Leak
	TopCategory     string
	TopValue        float64
}

// MonthClose is the end-of-period report.
type MonthClose struct {
	Score           int         `json:"score"`
	Status          MonthStatus `json:"status"`
	StatusLabel     string      `json:"status_label"`
	TopCategory     string      `json:"top_category"`
	TopValue        float64     `json:"top_value"`
	Warning         string      `json:"warning"`
	NextSteps       []string    `json:"next_steps"`
	AvgGoalProgress int         `json:"avg_goal_progress"`
	LeakCount       int         `json:"leak_count"`
}

// ScoreMonthClose computes the 0-100 score, its tier and the next steps.
func ScoreMonthClose(in MonthCloseInput) MonthClose {
	t := in.Totals
	overspent := t.Spent > t.Income && t.Income > 0

	score := 50.0
	if t.Balance >= 0 {
		score += 12
	} else {
		score -= 12
	}
	if t.Income > 0 {
		score += 8
	}
	if overspent {
		score -= 8
	}
	score += math.Min(20, money.Round(float64(in.AvgGoalProgress)/5))
	score -= math.Min(15, float64(len(in.Leaks)*4))
	score = money.ClampPercent(money.Round(score))

	var steps []string
	if t.Balance < 0 {
		steps = append(steps, StepNegativeBalance)
	}
	if len(in.Leaks) > 0 {
		steps = append(steps, fmt.Sprintf("Cortar pequenos gastos em %s para reduzir vazamentos.", in.Leaks[0].Category))
	}
	if in.GoalCount > 0 && in.AvgGoalProgress < 60 {
		steps = append(steps, StepGoalContrib)
	}
	if t.Income == 0 {
		steps = append(steps, StepNoIncome)
	}
	if len(steps) == 0 {
		steps = append(steps, StepKeepPace)
	}

	warning := WarningOK
	if overspent {
		warning = WarningOverspent
	}

	status := tierFor(int(score))
	return MonthClose{
		Score:           int(score),
		Status:          status,
		StatusLabel:     status.Label(),
		TopCategory:     in.TopCategory,
		TopValue:        in.TopValue,
		Warning:         warning,
		NextSteps:       steps,
		AvgGoalProgress: in.AvgGoalProgress,
		LeakCount:       len(in.Leaks),
	}
}

func tierFor(score int) MonthStatus {
	switch {
	case score >= 75:
		return MonthExcellent
	case score >= 55:
		return MonthGood
	case score >= 35:
		return MonthCaution
	default:
		return MonthCritical
	}
}

// CloseMonth scores the ledger and goals as of now.
func CloseMonth(entries []domain.Transaction, goals []domain.Goal, now time.Time) MonthClose {
	top, topValue := TopCategory(entries)
	return ScoreMonthClose(MonthCloseInput{
		Totals:          ComputeTotals(entries),
		AvgGoalProgress: AverageGoalProgress(goals),
		GoalCount:       len(goals),
		Leaks:           DetectLeaks(entries, now),
		TopCategory:     top,
		TopValue:        topValue,
	})
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Marco", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthLabel renders "Outubro 2026".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}
