package domain

import (
	"math"

	"github.com/google/uuid"
)

// Goal categories, a closed set.
const (
	GoalEmergency  = "Reserva de emergencia"
	GoalTravel     = "Viagem"
	GoalEducation  = "Educacao"
	GoalHome       = "Casa"
	GoalCar        = "Carro"
	GoalHealth     = "Saude"
	GoalInvestment = "Investimento"
	GoalOther      = "Outros"
)

// GoalCategories lists every goal category in display order.
var GoalCategories = []string{
	GoalEmergency, GoalTravel, GoalEducation, GoalHome,
	GoalCar, GoalHealth, GoalInvestment, GoalOther,
}

// IsGoalCategory reports whether name belongs to the closed set.
func IsGoalCategory(name string) bool {
	for _, c := range GoalCategories {
		if c == name {
			return true
		}
	}
	return false
}

// Goal is a tracked savings objective. Progress is kept within [0, 100].
type Goal struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Target   float64 `json:"target"`
	Progress int     `json:"progress"`
}

// NewGoal builds a goal with a fresh ID and a clamped progress.
func NewGoal(title, category string, target float64, progress int) Goal {
	if !IsGoalCategory(category) {
		category = GoalOther
	}
	return Goal{
		ID:       uuid.New().String(),
		Title:    title,
		Category: category,
		Target:   target,
		Progress: ClampProgress(progress),
	}
}

// Saved is the amount already set aside, derived from progress.
func (g Goal) Saved() float64 {
	return float64(g.Progress) / 100 * g.Target
}

// Remaining is what is still missing to reach the target.
func (g Goal) Remaining() float64 {
	return math.Max(g.Target-g.Saved(), 0)
}

// ClampProgress bounds a percentage to [0, 100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// GoalDraft is a proposed goal awaiting explicit confirmation.
type GoalDraft struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Target   float64 `json:"target"`
}

// Promote turns the draft into a tracked goal with zero progress.
func (d GoalDraft) Promote() Goal {
	return Goal{
		ID:       d.ID,
		Title:    d.Title,
		Category: d.Category,
		Target:   d.Target,
		Progress: 0,
	}
}

// GoalPatch carries optional edits for a goal.
type GoalPatch struct {
	Title    *string  `json:"title,omitempty"`
	Category *string  `json:"category,omitempty"`
	Target   *float64 `json:"target,omitempty"`
	Progress *int     `json:"progress,omitempty"`
}

// Apply returns g with the patch applied, keeping progress in range.
// Non-positive targets are ignored.
func (p GoalPatch) Apply(g Goal) Goal {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Category != nil && IsGoalCategory(*p.Category) {
		g.Category = *p.Category
	}
	if p.Target != nil && *p.Target > 0 {
		g.Target = *p.Target
	}
	if p.Progress != nil {
		g.Progress = ClampProgress(*p.Progress)
	}
	return g
}
