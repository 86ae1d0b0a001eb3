package babilonia

import "strings"

// StageStatus is the unlock state of a stage.
type StageStatus string

const (
	StageBlocked    StageStatus = "Bloqueado"
	StageInProgress StageStatus = "Em Progresso"
	StageDone       StageStatus = "Concluido"
)

// StageTitles are the seven milestones, in unlock order.
var StageTitles = [...]string{
	"Pague-se Primeiro",
	"Controle de Gastos",
	"Dinheiro Trabalhando",
	"Protecao Financeira",
	"Moradia Inteligente",
	"Futuro Financeiro",
	"Aumento de Renda",
}

// StageCount is the number of stages.
const StageCount = len(StageTitles)

// Stage is one milestone with its derived status.
type Stage struct {
	ID     int         `json:"id"`
	Title  string      `json:"title"`
	Status StageStatus `json:"status"`
}

// Completion evaluates the seven stage predicates in order.
func Completion(p Profile) [StageCount]bool {
	reserveMonths := EmergencyReserveMonths(p.EmergencyReserve, p.MonthlyIncome)

	return [StageCount]bool{
		p.MonthlyIncome > 0 && p.CurrentSavings > 0,
		len(p.Expenses) > 0 && p.MonthlyIncome > 0 && p.ExpensesTotal() <= p.MonthlyIncome,
		p.InvestedAmount > 0 && p.AnnualRate > 0 && p.InvestmentMonths > 0,
		reserveMonths >= 6,
		p.PropertyValue > 0 && p.DownPaymentTarget > 0 && p.HousingDeadlineMonths > 0,
		p.CurrentAge > 0 && p.TargetAge > p.CurrentAge && p.DesiredFutureIncome > 0,
		strings.TrimSpace(p.Skills) != "" && p.FutureIncomeGoal > p.MonthlyIncome,
	}
}

// Stages derives the status chain. A stage is Done when its own predicate
// holds, InProgress when every earlier predicate holds, and Blocked
// otherwise.
func Stages(p Profile) []Stage {
	done := Completion(p)
	stages := make([]Stage, StageCount)
	earlierPending := false

	for i, title := range StageTitles {
		status := StageBlocked
		switch {
		case done[i]:
			status = StageDone
		case !earlierPending:
			status = StageInProgress
		}
		stages[i] = Stage{ID: i + 1, Title: title, Status: status}
		if !done[i] {
			earlierPending = true
		}
	}
	return stages
}

// OverallProgress is the share of completed stages, 0-100.
func OverallProgress(p Profile) int {
	count := 0
	for _, ok := range Completion(p) {
		if ok {
			count++
		}
	}
	return int(float64(count)/float64(StageCount)*100 + 0.5)
}
