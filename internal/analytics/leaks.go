package analytics

import (
	"sort"
	"time"

	"github.com/dvloznov/finance-chat/internal/domain"
)

// Leak detection thresholds.
const (
	LeakWindow   = 30 * 24 * time.Hour
	LeakMinCount = 4
	LeakMaxAvg   = 60.0
	LeakLimit    = 3
)

// Leak is a category with frequent, small expenses.
type Leak struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Avg      float64 `json:"avg"`
}

// DetectLeaks groups the last 30 days of expenses by category and keeps
// those with at least 4 entries averaging at most 60, largest total first.
func DetectLeaks(entries []domain.Transaction, now time.Time) []Leak {
	index := make(map[string]int)
	var groups []Leak
	for _, tx := range entries {
		if tx.IsIncome() || now.Sub(tx.CreatedAt) > LeakWindow {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(groups)
			index[tx.Category] = i
			groups = append(groups, Leak{Category: tx.Category})
		}
		groups[i].Count++
		groups[i].Total += tx.Amount
	}

	leaks := make([]Leak, 0, len(groups))
	for _, g := range groups {
		g.Avg = g.Total / float64(g.Count)
		if g.Count >= LeakMinCount && g.Avg <= LeakMaxAvg {
			leaks = append(leaks, g)
		}
	}

	sort.SliceStable(leaks, func(a, b int) bool {
		return leaks[a].Total > leaks[b].Total
	})

	if len(leaks) > LeakLimit {
		leaks = leaks[:LeakLimit]
	}
	return leaks
}
