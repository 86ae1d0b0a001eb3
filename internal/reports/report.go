// Package reports builds the month-close report of a session and exports it.
package reports

import (
	"time"

	"github.com/dvloznov/finance-chat/internal/analytics"
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/session"
)

// Report is the exported month-close document.
type Report struct {
	SessionID   string                    `json:"session_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Month       string                    `json:"month"`
	MonthLabel  string                    `json:"month_label"`
	Totals      analytics.Totals          `json:"totals"`
	Categories  []analytics.CategoryTotal `json:"categories"`
	Leaks       []analytics.Leak          `json:"leaks"`
	Compass     analytics.Compass         `json:"compass"`
	MonthClose  analytics.MonthClose      `json:"month_close"`
	Goals       []domain.Goal             `json:"goals"`
}

// Build assembles the report for a session snapshot at now.
func Build(snap session.Snapshot, now time.Time) Report {
	goals := snap.Goals
	if goals == nil {
		goals = []domain.Goal{}
	}
	return Report{
		SessionID:   snap.ID,
		GeneratedAt: now,
		Month:       now.Format("2006-01"),
		MonthLabel:  analytics.MonthLabel(now),
		Totals:      analytics.ComputeTotals(snap.Entries),
		Categories:  analytics.CategoryTotals(snap.Entries, 5),
		Leaks:       analytics.DetectLeaks(snap.Entries, now),
		Compass:     analytics.AnalyzeCompass(snap.Entries, now),
		MonthClose:  analytics.CloseMonth(snap.Entries, snap.Goals, now),
		Goals:       goals,
	}
}
