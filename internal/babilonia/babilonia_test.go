package babilonia

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func statuses(stages []Stage) []StageStatus {
	out := make([]StageStatus, len(stages))
	for i, s := range stages {
		out[i] = s.Status
	}
	return out
}

func TestStages_ZeroProfile(t *testing.T) {
	got := statuses(Stages(Profile{}))
	want := []StageStatus{
		StageInProgress, StageBlocked, StageBlocked, StageBlocked,
		StageBlocked, StageBlocked, StageBlocked,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stages() mismatch (-want +got):\n%s", diff)
	}
}

func TestStages_FirstStageDone(t *testing.T) {
	p := Profile{MonthlyIncome: 5000, CurrentSavings: 600}
	got := statuses(Stages(p))
	want := []StageStatus{
		StageDone, StageInProgress, StageBlocked, StageBlocked,
		StageBlocked, StageBlocked, StageBlocked,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stages() mismatch (-want +got):\n%s", diff)
	}
}

func TestStages_LaterPredicateStaysDoneBehindGap(t *testing.T) {
	// Stage 3 holds while stage 2 doesn't: 3 is Done, 4 stays Blocked.
	p := Profile{
		MonthlyIncome:    5000,
		CurrentSavings:   600,
		InvestedAmount:   1000,
		AnnualRate:       10,
		InvestmentMonths: 12,
	}
	got := statuses(Stages(p))
	want := []StageStatus{
		StageDone, StageInProgress, StageDone, StageBlocked,
		StageBlocked, StageBlocked, StageBlocked,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stages() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletion(t *testing.T) {
	full := Profile{
		MonthlyIncome:         5000,
		CurrentSavings:        600,
		Expenses:              []ExpenseItem{{Description: "aluguel", Amount: 1500}},
		InvestedAmount:        1000,
		AnnualRate:            10,
		InvestmentMonths:      12,
		EmergencyReserve:      30000,
		PropertyValue:         300000,
		DownPaymentTarget:     60000,
		HousingDeadlineMonths: 48,
		CurrentAge:            30,
		TargetAge:             60,
		DesiredFutureIncome:   8000,
		Skills:                "design, ingles",
		FutureIncomeGoal:      9000,
	}
	for i, ok := range Completion(full) {
		if !ok {
			t.Errorf("stage %d predicate = false", i+1)
		}
	}
	if got := OverallProgress(full); got != 100 {
		t.Errorf("OverallProgress = %d, want 100", got)
	}

	over := full.Clone()
	over.Expenses = append(over.Expenses, ExpenseItem{Description: "viagem", Amount: 4000})
	if Completion(over)[1] {
		t.Error("stage 2 should fail when expenses exceed income")
	}

	ages := full.Clone()
	ages.TargetAge = 30
	if Completion(ages)[5] {
		t.Error("stage 6 should fail when target age is not after current age")
	}

	skills := full.Clone()
	skills.Skills = "   "
	if Completion(skills)[6] {
		t.Error("stage 7 should fail with blank skills")
	}
}

func TestOverallProgress(t *testing.T) {
	p := Profile{MonthlyIncome: 5000, CurrentSavings: 600}
	if got := OverallProgress(p); got != 14 {
		t.Errorf("OverallProgress = %d, want 14", got)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		p     Profile
		score int
		level Level
	}{
		{name: "zero", p: Profile{}, score: 0, level: LevelBeginner},
		{
			name:  "savings above recommendation",
			p:     Profile{MonthlyIncome: 5000, CurrentSavings: 600},
			score: 40,
			level: LevelBuilder,
		},
		{
			name:  "half reserve and investment",
			p:     Profile{MonthlyIncome: 5000, CurrentSavings: 250, EmergencyReserve: 15000, InvestedAmount: 1},
			score: 60,
			level: LevelInvestor,
		},
		{
			name:  "everything maxed",
			p:     Profile{MonthlyIncome: 5000, CurrentSavings: 500, EmergencyReserve: 30000, InvestedAmount: 10},
			score: 100,
			level: LevelArchitect,
		},
		{
			name:  "reserve without income uses floor of one",
			p:     Profile{EmergencyReserve: 1},
			score: 40,
			level: LevelBuilder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(tt.p)
			if ev.Score != tt.score {
				t.Errorf("Score = %d, want %d", ev.Score, tt.score)
			}
			if ev.Level != tt.level {
				t.Errorf("Level = %q, want %q", ev.Level, tt.level)
			}
			if len(ev.Stages) != StageCount {
				t.Errorf("len(Stages) = %d", len(ev.Stages))
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[int]Level{0: LevelBeginner, 24: LevelBeginner, 25: LevelBuilder, 49: LevelBuilder, 50: LevelInvestor, 74: LevelInvestor, 75: LevelArchitect, 100: LevelArchitect}
	for score, want := range cases {
		if got := LevelFor(score); got != want {
			t.Errorf("LevelFor(%d) = %q, want %q", score, got, want)
		}
	}
}

func TestClassifyExpense(t *testing.T) {
	if got := ClassifyExpense("Conta de água"); got != ExpenseNeed {
		t.Errorf("ClassifyExpense(água) = %q", got)
	}
	if got := ClassifyExpense("Streaming"); got != ExpenseWant {
		t.Errorf("ClassifyExpense(Streaming) = %q", got)
	}
}

func TestProfile_WireNames(t *testing.T) {
	var p Profile
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var keys map[string]any
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for name := range p.numericFields() {
		if _, ok := keys[name]; !ok {
			t.Errorf("settable field %q is not a profile JSON key", name)
		}
	}

	out, err := json.Marshal(struct {
		Evaluation Evaluation
		Planning   Planning
	}{Evaluate(p), Plan(p)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, key := range []string{`"overall_progress"`, `"reserve_months"`, `"recommended_savings"`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("missing %s in %s", key, out)
		}
	}
}

func TestProfile_SetField(t *testing.T) {
	var p Profile
	tests := []struct {
		field string
		value any
		check func() float64
		want  float64
	}{
		{"monthly_income", "R$ 5.000,50", func() float64 { return p.MonthlyIncome }, 5000.5},
		{"current_savings", 600.0, func() float64 { return p.CurrentSavings }, 600},
		{"annual_rate", "abc", func() float64 { return p.AnnualRate }, 0},
		{"investment_months", json.Number("12"), func() float64 { return p.InvestmentMonths }, 12},
		{"target_age", 60, func() float64 { return p.TargetAge }, 60},
		{"property_value", true, func() float64 { return p.PropertyValue }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if err := p.SetField(tt.field, tt.value); err != nil {
				t.Fatalf("SetField: %v", err)
			}
			if got := tt.check(); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.field, got, tt.want)
			}
		})
	}

	if err := p.SetField("skills", "go, sql"); err != nil || p.Skills != "go, sql" {
		t.Errorf("skills = %q, err %v", p.Skills, err)
	}
	if err := p.SetField("nope", 1); !errors.Is(err, ErrUnknownField) {
		t.Errorf("SetField(nope) err = %v, want ErrUnknownField", err)
	}
}

func TestMonthlySavingsProjection(t *testing.T) {
	got := MonthlySavingsProjection(100)
	if len(got) != 12 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != (SeriesPoint{Label: "Mes 1", Total: 100}) {
		t.Errorf("first point = %+v", got[0])
	}
	if got[1].Total != 200.3 {
		t.Errorf("second total = %v, want 200.3", got[1].Total)
	}
}

func TestCompoundInterestSeries(t *testing.T) {
	got := CompoundInterestSeries(1000, 12, 2)
	want := []SeriesPoint{{Label: "M1", Total: 1010}, {Label: "M2", Total: 1020.1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CompoundInterestSeries mismatch (-want +got):\n%s", diff)
	}

	flat := CompoundInterestSeries(500, 0, 0)
	if len(flat) != 1 || flat[0].Total != 500 {
		t.Errorf("zero months/rate = %+v", flat)
	}
}

func TestReserve(t *testing.T) {
	if got := EmergencyReserveMonths(15000, 0); got != 0 {
		t.Errorf("months with no income = %v", got)
	}
	cases := []struct {
		months float64
		want   ReserveBand
	}{{6, ReserveGreen}, {3, ReserveYellow}, {2.9, ReserveRed}}
	for _, c := range cases {
		if got := ReserveBandFor(c.months); got != c.want {
			t.Errorf("ReserveBandFor(%v) = %q, want %q", c.months, got, c.want)
		}
	}
}

func TestEntryTimeEstimate(t *testing.T) {
	if m, ok := EntryTimeEstimate(10000, 2000, 3000); !ok || m != 3 {
		t.Errorf("EntryTimeEstimate = %d, %v; want 3, true", m, ok)
	}
	if m, ok := EntryTimeEstimate(1000, 2000, 0); !ok || m != 0 {
		t.Errorf("already reached = %d, %v", m, ok)
	}
	if _, ok := EntryTimeEstimate(1000, 0, 0); ok {
		t.Error("no capacity should be unreachable")
	}
}

func TestFuturePatrimonyTarget(t *testing.T) {
	if got := FuturePatrimonyTarget(5000); math.Abs(got-1500000) > 1e-6 {
		t.Errorf("FuturePatrimonyTarget = %v", got)
	}
	if got := FuturePatrimonyTarget(0); got != 0 {
		t.Errorf("zero = %v", got)
	}
}

func TestIncomeGrowthPlan(t *testing.T) {
	plan := IncomeGrowthPlan("go, sql, , ingles, design", 5000, 8000)
	if len(plan) != 3 {
		t.Fatalf("len = %d", len(plan))
	}
	if plan[0] != "Mapear lacunas entre renda atual (R$ 5.000,00) e meta (R$ 8.000,00)." {
		t.Errorf("line 1 = %q", plan[0])
	}
	if plan[1] != "Alavancar habilidades: go, sql, ingles em projetos com monetizacao direta." {
		t.Errorf("line 2 = %q", plan[1])
	}

	empty := IncomeGrowthPlan("", 0, 0)
	if empty[1] != "Escolher 2 habilidades de alto valor para aprofundamento e portfolio." {
		t.Errorf("fallback line = %q", empty[1])
	}
}

func TestPlan(t *testing.T) {
	p := Profile{
		MonthlyIncome:     5000,
		CurrentSavings:    1000,
		DownPaymentTarget: 7000,
		Expenses: []ExpenseItem{
			{Description: "aluguel", Amount: 1500, Kind: ExpenseNeed},
			{Description: "cinema", Amount: 500, Kind: ExpenseWant},
		},
	}
	got := Plan(p)
	if got.EntryMonths == nil || *got.EntryMonths != 2 {
		t.Errorf("EntryMonths = %v, want 2", got.EntryMonths)
	}
	if got.NeedsTotal != 1500 || got.WantsTotal != 500 {
		t.Errorf("needs/wants = %v/%v", got.NeedsTotal, got.WantsTotal)
	}
	if got.RecommendedSavings != 500 {
		t.Errorf("RecommendedSavings = %v", got.RecommendedSavings)
	}
}

func TestStore(t *testing.T) {
	s := NewStore()

	if got := s.Snapshot("a"); got.MonthlyIncome != 0 || len(got.Expenses) != 0 {
		t.Errorf("fresh snapshot = %+v", got)
	}
	if _, err := s.Update("a", "monthly_income", "5000"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := s.Update("a", "bogus", 1); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Update(bogus) err = %v", err)
	}

	if _, ok := s.AddExpense("a", "  ", 10); ok {
		t.Error("blank description accepted")
	}
	if _, ok := s.AddExpense("a", "cinema", 0); ok {
		t.Error("zero amount accepted")
	}
	first, _ := s.AddExpense("a", "mercado", 800)
	second, ok := s.AddExpense("a", "cinema", 60)
	if !ok || second.Kind != ExpenseWant {
		t.Fatalf("AddExpense = %+v, %v", second, ok)
	}

	snap := s.Snapshot("a")
	if snap.MonthlyIncome != 5000 || len(snap.Expenses) != 2 || snap.Expenses[0].ID != second.ID {
		t.Errorf("snapshot = %+v", snap)
	}
	snap.Expenses[0].Amount = 1
	if s.Snapshot("a").Expenses[0].Amount != 60 {
		t.Error("snapshot shares storage with the store")
	}

	if !s.RemoveExpense("a", first.ID) || s.RemoveExpense("a", first.ID) {
		t.Error("RemoveExpense should succeed once")
	}
	if got := s.Snapshot("b"); got.MonthlyIncome != 0 {
		t.Error("sessions are not isolated")
	}

	if _, err := s.UpdateMany("a", map[string]any{"current_savings": 600.0, "skills": "go"}); err != nil {
		t.Fatalf("UpdateMany: %v", err)
	}
	if ev := Evaluate(s.Snapshot("a")); ev.Stages[0].Status != StageDone {
		t.Errorf("stage 1 = %q after update", ev.Stages[0].Status)
	}
}
