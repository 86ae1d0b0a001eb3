package babilonia

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/finance-chat/internal/money"
)

const (
	savingsMonthlyRate = 0.003
	realAnnualYield    = 0.04
	projectionMonths   = 12
)

// SeriesPoint is one labelled value of a projection.
type SeriesPoint struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// RecommendedSavings is 10% of income.
func RecommendedSavings(income float64) float64 {
	return income * 0.1
}

// MonthlySavingsProjection accumulates a fixed monthly deposit for twelve
// months at 0.3% a month.
func MonthlySavingsProjection(monthly float64) []SeriesPoint {
	series := make([]SeriesPoint, 0, projectionMonths)
	total := 0.0
	for i := 1; i <= projectionMonths; i++ {
		total = total*(1+savingsMonthlyRate) + monthly
		series = append(series, SeriesPoint{Label: fmt.Sprintf("Mes %d", i), Total: money.Round2(total)})
	}
	return series
}

// CompoundInterestSeries grows invested at annualRate (percent) for the given
// months, at least one.
func CompoundInterestSeries(invested, annualRate float64, months int) []SeriesPoint {
	rate := 0.0
	if annualRate > 0 {
		rate = annualRate / 100 / 12
	}
	if months < 1 {
		months = 1
	}

	series := make([]SeriesPoint, 0, months)
	for i := 1; i <= months; i++ {
		total := invested * math.Pow(1+rate, float64(i))
		series = append(series, SeriesPoint{Label: fmt.Sprintf("M%d", i), Total: money.Round2(total)})
	}
	return series
}

// ReserveBand colours the months covered by the emergency reserve.
type ReserveBand string

const (
	ReserveGreen  ReserveBand = "green"
	ReserveYellow ReserveBand = "yellow"
	ReserveRed    ReserveBand = "red"
)

// EmergencyReserveMonths is how many months of income the reserve covers.
func EmergencyReserveMonths(reserve, income float64) float64 {
	if income <= 0 {
		return 0
	}
	return reserve / income
}

// ReserveBandFor returns green from six months, yellow from three.
func ReserveBandFor(months float64) ReserveBand {
	switch {
	case months >= 6:
		return ReserveGreen
	case months >= 3:
		return ReserveYellow
	default:
		return ReserveRed
	}
}

// EntryTimeEstimate returns the months needed to reach the down payment.
// ok is false when the target is unreachable with the given capacity.
func EntryTimeEstimate(target, saved, monthlyCapacity float64) (months int, ok bool) {
	missing := math.Max(0, target-saved)
	if missing == 0 {
		return 0, true
	}
	if monthlyCapacity <= 0 {
		return 0, false
	}
	return int(math.Ceil(missing / monthlyCapacity)), true
}

// FuturePatrimonyTarget is the capital that yields the desired monthly
// income at a 4% real annual return.
func FuturePatrimonyTarget(desiredMonthly float64) float64 {
	yearly := desiredMonthly * 12
	if yearly <= 0 {
		return 0
	}
	return yearly / realAnnualYield
}

// IncomeGrowthPlan returns three action lines built from a comma-separated
// skills list.
func IncomeGrowthPlan(skills string, current, goal float64) []string {
	var parsed []string
	for _, s := range strings.Split(skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			parsed = append(parsed, s)
		}
	}

	leverage := "Escolher 2 habilidades de alto valor para aprofundamento e portfolio."
	if len(parsed) > 0 {
		if len(parsed) > 3 {
			parsed = parsed[:3]
		}
		leverage = fmt.Sprintf("Alavancar habilidades: %s em projetos com monetizacao direta.", strings.Join(parsed, ", "))
	}

	return []string{
		fmt.Sprintf("Mapear lacunas entre renda atual (%s) e meta (%s).", money.FormatBRL(current), money.FormatBRL(goal)),
		leverage,
		"Executar ciclos quinzenais: estudo, entrega publica e oferta de servicos/produtos.",
	}
}

// Planning bundles the helpers evaluated against a profile.
type Planning struct {
	RecommendedSavings float64       `json:"recommended_savings"`
	SavingsProjection  []SeriesPoint `json:"savings_projection"`
	CompoundInterest   []SeriesPoint `json:"compound_interest"`
	ReserveMonths      float64       `json:"reserve_months"`
	ReserveBand        ReserveBand   `json:"reserve_band"`
	EntryMonths        *int          `json:"entry_months"`
	PatrimonyTarget    float64       `json:"patrimony_target"`
	IncomePlan         []string      `json:"income_plan"`
	NeedsTotal         float64       `json:"needs_total"`
	WantsTotal         float64       `json:"wants_total"`
}

// Plan evaluates every planning helper for p. EntryMonths is nil when the
// down payment can't be reached with the current savings capacity.
func Plan(p Profile) Planning {
	recommended := RecommendedSavings(p.MonthlyIncome)
	reserveMonths := EmergencyReserveMonths(p.EmergencyReserve, p.MonthlyIncome)

	out := Planning{
		RecommendedSavings: recommended,
		SavingsProjection:  MonthlySavingsProjection(recommended),
		CompoundInterest:   CompoundInterestSeries(p.InvestedAmount, p.AnnualRate, int(p.InvestmentMonths)),
		ReserveMonths:      reserveMonths,
		ReserveBand:        ReserveBandFor(reserveMonths),
		PatrimonyTarget:    FuturePatrimonyTarget(p.DesiredFutureIncome),
		IncomePlan:         IncomeGrowthPlan(p.Skills, p.MonthlyIncome, p.FutureIncomeGoal),
	}

	if months, ok := EntryTimeEstimate(p.DownPaymentTarget, p.CurrentSavings, monthlyCapacity(p)); ok {
		out.EntryMonths = &months
	}

	for _, e := range p.Expenses {
		if e.Kind == ExpenseNeed {
			out.NeedsTotal += e.Amount
		} else {
			out.WantsTotal += e.Amount
		}
	}
	return out
}

// monthlyCapacity is what is left of income after listed expenses.
func monthlyCapacity(p Profile) float64 {
	return math.Max(0, p.MonthlyIncome-p.ExpensesTotal())
}
