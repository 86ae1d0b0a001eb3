// Package analytics derives dashboards and scores from a ledger snapshot.
// Every function here is pure: callers pass the entries, the goals and the
// reference time, and nothing is mutated.
package analytics

import (
	"sort"

	"github.com/dvloznov/finance-chat/internal/domain"
)

// NoDataLabel is shown when there is nothing to rank.
const NoDataLabel = "Sem dados"

// Totals aggregates the whole ledger.
type Totals struct {
	Income       float64 `json:"income"`
	Spent        float64 `json:"spent"`
	Balance      float64 `json:"balance"`
	ExpenseCount int     `json:"expense_count"`
	IncomeCount  int     `json:"income_count"`
	AvgExpense   float64 `json:"avg_expense"`
}

// ComputeTotals sums income and expenses.
func ComputeTotals(entries []domain.Transaction) Totals {
	var t Totals
	for _, tx := range entries {
		if tx.IsIncome() {
			t.Income += tx.Amount
			t.IncomeCount++
		} else {
			t.Spent += tx.Amount
			t.ExpenseCount++
		}
	}
	t.Balance = t.Income - t.Spent
	if t.ExpenseCount > 0 {
		t.AvgExpense = t.Spent / float64(t.ExpenseCount)
	}
	return t
}

// CategoryTotal is the sum of all entries in a category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryTotals sums every entry per category, income included, and
// returns the largest limit totals. Ties keep first-seen order.
func CategoryTotals(entries []domain.Transaction, limit int) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, tx := range entries {
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{Category: tx.Category})
		}
		totals[i].Total += tx.Amount
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Total > totals[b].Total
	})

	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}

// TopCategory returns the highest category total or NoDataLabel.
func TopCategory(entries []domain.Transaction) (string, float64) {
	top := CategoryTotals(entries, 1)
	if len(top) == 0 {
		return NoDataLabel, 0
	}
	return top[0].Category, top[0].Total
}
