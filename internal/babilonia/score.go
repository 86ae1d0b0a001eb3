package babilonia

import (
	"math"

	"github.com/dvloznov/finance-chat/internal/money"
)

// Level is the maturity tier derived from the score.
type Level string

const (
	LevelBeginner  Level = "Iniciante"
	LevelBuilder   Level = "Construtor"
	LevelInvestor  Level = "Investidor"
	LevelArchitect Level = "Arquiteto da Riqueza"
)

// LevelFor maps a score to its tier.
func LevelFor(score int) Level {
	switch {
	case score >= 75:
		return LevelArchitect
	case score >= 50:
		return LevelInvestor
	case score >= 25:
		return LevelBuilder
	default:
		return LevelBeginner
	}
}

// SavingsConsistency compares savings with the recommended 10% of income.
func SavingsConsistency(income, savings float64) float64 {
	recommended := RecommendedSavings(income)
	if recommended <= 0 {
		return 0
	}
	return money.ClampPercent(savings / recommended * 100)
}

// ReserveProgress measures the emergency reserve against six months of
// income. The denominator never drops below 1.
func ReserveProgress(reserve, income float64) float64 {
	return money.ClampPercent(reserve / math.Max(1, income*6) * 100)
}

// Score weights savings 40%, reserve 40% and having any investment 20%.
func Score(p Profile) int {
	investment := 0.0
	if p.InvestedAmount > 0 {
		investment = 100
	}
	raw := SavingsConsistency(p.MonthlyIncome, p.CurrentSavings)*0.4 +
		ReserveProgress(p.EmergencyReserve, p.MonthlyIncome)*0.4 +
		investment*0.2
	return int(money.Round(raw))
}

// Evaluation is the full derived view of a profile.
type Evaluation struct {
	Stages          []Stage `json:"stages"`
	Score           int     `json:"score"`
	Level           Level   `json:"level"`
	OverallProgress int     `json:"overall_progress"`
}

// Evaluate computes stages, score, level and overall progress.
func Evaluate(p Profile) Evaluation {
	score := Score(p)
	return Evaluation{
		Stages:          Stages(p),
		Score:           score,
		Level:           LevelFor(score),
		OverallProgress: OverallProgress(p),
	}
}
