package reports

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dvloznov/finance-chat/internal/analytics"
	"github.com/dvloznov/finance-chat/internal/session"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func TestBuild(t *testing.T) {
	snap := session.Seeded("s-1", fixedNow).Snapshot()

	r := Build(snap, now)

	if r.SessionID != "s-1" {
		t.Errorf("SessionID = %q", r.SessionID)
	}
	if r.Month != "2026-10" {
		t.Errorf("Month = %q", r.Month)
	}
	if r.MonthLabel != analytics.MonthLabel(now) {
		t.Errorf("MonthLabel = %q", r.MonthLabel)
	}
	if diff := cmp.Diff(analytics.ComputeTotals(snap.Entries), r.Totals); diff != "" {
		t.Errorf("Totals mismatch (-want +got):\n%s", diff)
	}
	if r.Totals.Income != 1130 || r.Totals.Spent != 466 {
		t.Errorf("Totals = %+v", r.Totals)
	}
	if diff := cmp.Diff(analytics.CloseMonth(snap.Entries, snap.Goals, now), r.MonthClose); diff != "" {
		t.Errorf("MonthClose mismatch (-want +got):\n%s", diff)
	}
	if len(r.Goals) != 3 {
		t.Errorf("Goals = %d, want 3", len(r.Goals))
	}
}

func TestBuild_EmptySession(t *testing.T) {
	r := Build(session.New("empty", fixedNow).Snapshot(), now)
	if r.Goals == nil {
		t.Error("Goals should be an empty slice, not nil")
	}
	if r.Totals.Balance != 0 {
		t.Errorf("Balance = %v", r.Totals.Balance)
	}
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{"with session", Report{SessionID: "abc", Month: "2026-10"}, "month-close/2026-10/abc-x1.json"},
		{"without session", Report{Month: "2026-01"}, "month-close/2026-01/anonymous-x1.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectName(tt.report, "x1"); got != tt.want {
				t.Errorf("ObjectName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	r := Build(session.Seeded("s-2", fixedNow).Snapshot(), now)

	var buf bytes.Buffer
	if err := Encode(&buf, r); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["session_id"] != "s-2" {
		t.Errorf("session_id = %v", decoded["session_id"])
	}
	if _, ok := decoded["month_close"]; !ok {
		t.Error("month_close missing")
	}
}
