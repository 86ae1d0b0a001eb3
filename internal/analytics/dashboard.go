package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// DayPoint is one calendar day of spending.
type DayPoint struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Height float64 `json:"height"`
}

// DailySpend sums expenses for the 7 calendar days ending today, in
// now's location. Height is the value relative to the busiest day.
func DailySpend(entries []domain.Transaction, now time.Time) []DayPoint {
	const days = 7
	loc := now.Location()
	points := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		d := now.AddDate(0, 0, -(days - 1 - i))
		points[i].Label = d.Format("02/01")
		index[d.Format(time.DateOnly)] = i
	}

	for _, tx := range entries {
		if tx.IsIncome() {
			continue
		}
		if i, ok := index[tx.CreatedAt.In(loc).Format(time.DateOnly)]; ok {
			points[i].Value += tx.Amount
		}
	}

	maxValue := 1.0
	for _, p := range points {
		maxValue = math.Max(maxValue, p.Value)
	}
	for i := range points {
		points[i].Height = points[i].Value / maxValue
	}
	return points
}

// BehaviorInsight points at the heaviest spending day of the week.
type BehaviorInsight struct {
	PeakLabel  string  `json:"peak_label"`
	PeakValue  float64 `json:"peak_value"`
	Suggestion string  `json:"suggestion"`
}

// Behavior finds the peak day in a daily series.
func Behavior(series []DayPoint) BehaviorInsight {
	if len(series) == 0 {
		return BehaviorInsight{PeakLabel: NoDataLabel, Suggestion: "Lance despesas para ver seus picos."}
	}
	peak := series[0]
	for _, p := range series[1:] {
		if p.Value > peak.Value {
			peak = p
		}
	}
	suggestion := "Sem picos relevantes na semana."
	if peak.Value > 0 {
		suggestion = fmt.Sprintf("Pico em %s. Tente ajustar gastos nesse dia e definir um teto semanal.", peak.Label)
	}
	return BehaviorInsight{PeakLabel: peak.Label, PeakValue: peak.Value, Suggestion: suggestion}
}

// MonthFlow is income against expenses for one calendar month.
type MonthFlow struct {
	Label   string  `json:"label"`
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

var shortMonths = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthlyFlow covers the current month and the three before it.
func MonthlyFlow(entries []domain.Transaction, now time.Time) []MonthFlow {
	const months = 4
	loc := now.Location()
	flow := make([]MonthFlow, months)
	for i := range flow {
		first := time.Date(now.Year(), now.Month()-time.Month(months-1-i), 1, 0, 0, 0, 0, loc)
		flow[i] = MonthFlow{Label: shortMonths[first.Month()-1], Year: first.Year(), Month: int(first.Month())}
	}

	for _, tx := range entries {
		at := tx.CreatedAt.In(loc)
		for i := range flow {
			if flow[i].Year == at.Year() && flow[i].Month == int(at.Month()) {
				if tx.IsIncome() {
					flow[i].Income += tx.Amount
				} else {
					flow[i].Expense += tx.Amount
				}
				break
			}
		}
	}
	return flow
}

// GoalCategoryStat aggregates goals sharing a category.
type GoalCategoryStat struct {
	Category    string `json:"category"`
	Count       int    `json:"count"`
	AvgProgress int    `json:"avg_progress"`
}

// GoalStats summarizes the goal list.
type GoalStats struct {
	AvgProgress  int                `json:"avg_progress"`
	TargetTotal  float64            `json:"target_total"`
	AtRisk       []domain.Goal      `json:"at_risk"`
	Healthy      []domain.Goal      `json:"healthy"`
	ByCategory   []GoalCategoryStat `json:"by_category"`
	Contributed  float64            `json:"contributed"`
	ActiveGoalID string             `json:"active_goal_id,omitempty"`
}

// AverageGoalProgress is the rounded mean progress, 0 without goals.
func AverageGoalProgress(goals []domain.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += g.Progress
	}
	return int(money.Round(float64(sum) / float64(len(goals))))
}

// ComputeGoalStats derives the goal panel. Goals under 40% are at risk,
// goals at 70% or more are healthy. Contributed sums the Metas entries.
func ComputeGoalStats(goals []domain.Goal, entries []domain.Transaction) GoalStats {
	stats := GoalStats{
		AvgProgress: AverageGoalProgress(goals),
		AtRisk:      []domain.Goal{},
		Healthy:     []domain.Goal{},
	}

	index := make(map[string]int)
	sums := []int{}
	for _, g := range goals {
		stats.TargetTotal += g.Target
		if g.Progress < 40 {
			stats.AtRisk = append(stats.AtRisk, g)
		}
		if g.Progress >= 70 {
			stats.Healthy = append(stats.Healthy, g)
		}
		i, ok := index[g.Category]
		if !ok {
			i = len(stats.ByCategory)
			index[g.Category] = i
			stats.ByCategory = append(stats.ByCategory, GoalCategoryStat{Category: g.Category})
			sums = append(sums, 0)
		}
		stats.ByCategory[i].Count++
		sums[i] += g.Progress
	}
	for i := range stats.ByCategory {
		stats.ByCategory[i].AvgProgress = int(money.Round(float64(sums[i]) / float64(stats.ByCategory[i].Count)))
	}

	for _, tx := range entries {
		if tx.Category == domain.CategoryGoals {
			stats.Contributed += tx.Amount
		}
	}
	if len(goals) > 0 {
		stats.ActiveGoalID = goals[0].ID
	}
	return stats
}

// Dashboard bundles every derived panel.
type Dashboard struct {
	MonthLabel     string          `json:"month_label"`
	Totals         Totals          `json:"totals"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
	DailySpend     []DayPoint      `json:"daily_spend"`
	Behavior       BehaviorInsight `json:"behavior"`
	MonthlyFlow    []MonthFlow     `json:"monthly_flow"`
	Goals          GoalStats       `json:"goals"`
	Leaks          []Leak          `json:"leaks"`
	Compass        Compass         `json:"compass"`
	MonthClose     MonthClose      `json:"month_close"`
}

// BuildDashboard computes all panels for a snapshot.
func BuildDashboard(entries []domain.Transaction, goals []domain.Goal, now time.Time) Dashboard {
	daily := DailySpend(entries, now)
	return Dashboard{
		MonthLabel:     MonthLabel(now),
		Totals:         ComputeTotals(entries),
		CategoryTotals: CategoryTotals(entries, 5),
		DailySpend:     daily,
		Behavior:       Behavior(daily),
		MonthlyFlow:    MonthlyFlow(entries, now),
		Goals:          ComputeGoalStats(goals, entries),
		Leaks:          DetectLeaks(entries, now),
		Compass:        AnalyzeCompass(entries, now),
		MonthClose:     CloseMonth(entries, goals, now),
	}
}
