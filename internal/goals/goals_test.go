package goals

import (
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "quero viajar para o Japão", want: domain.GoalTravel},
		{input: "montar minha reserva de emergência", want: domain.GoalEmergency},
		{input: "pagar a faculdade", want: domain.GoalEducation},
		{input: "entrada do apartamento", want: domain.GoalHome},
		{input: "trocar de carro", want: domain.GoalCar},
		{input: "plano de saúde", want: domain.GoalHealth},
		{input: "investir 200 por mes", want: domain.GoalInvestment},
		{input: "viagem para a casa da praia", want: domain.GoalTravel},
		{input: "quitar a divida", want: domain.GoalOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := InferCategory(tt.input); got != tt.want {
				t.Errorf("InferCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsGoalIntent(t *testing.T) {
	yes := []string{"quero guardar 300", "pagar a dívida do cartão", "meu objetivo", "Investir melhor", "nova meta"}
	no := []string{"gastei 50 no mercado", "resumo", "qual o saldo?"}

	for _, in := range yes {
		if !IsGoalIntent(in) {
			t.Errorf("IsGoalIntent(%q) = false", in)
		}
	}
	for _, in := range no {
		if IsGoalIntent(in) {
			t.Errorf("IsGoalIntent(%q) = true", in)
		}
	}
}

func TestNewDraft(t *testing.T) {
	draft, err := NewDraft("Quero guardar 5.000 para viagem ao Chile")
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	if draft.Target != 5000 || draft.Category != domain.GoalTravel || draft.ID == "" {
		t.Errorf("unexpected draft %+v", draft)
	}
	if draft.Title != "viagem ao Chile" {
		t.Errorf("Title = %q", draft.Title)
	}

	for _, in := range []string{"quero guardar dinheiro", "quero guardar 0 para viagem"} {
		if _, err := NewDraft(in); !errors.Is(err, money.ErrNoAmount) {
			t.Errorf("NewDraft(%q): expected ErrNoAmount, got %v", in, err)
		}
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		text  string
		token string
		want  string
	}{
		{text: "meta de 2000 para a reserva", token: "2000", want: "reserva"},
		{text: "objetivo curso de ingles 1500", token: "1500", want: "curso de ingles"},
		{text: "investir 300", token: "300", want: DefaultTitle},
		{text: "guardar 300", token: "300", want: DefaultTitle},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ExtractTitle(tt.text, tt.token); got != tt.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBuildPlan(t *testing.T) {
	g := domain.Goal{ID: "g1", Title: "Viagem", Target: 1000}
	plan := BuildPlan(g)

	if plan.Months != 6 || plan.Monthly != 167 {
		t.Errorf("plan = %d months of %v", plan.Months, plan.Monthly)
	}
	lines := strings.Split(plan.Text, "\n")
	if lines[0] != "## Plano automatico para Viagem" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Meta total R$ 1.000,00 em 6 meses." {
		t.Errorf("total line = %q", lines[1])
	}
	if lines[3] != "1. Separe R$ 167,00 por mes como prioridade fixa." {
		t.Errorf("first step = %q", lines[3])
	}
	if plan.Action.Kind != domain.ActionInitGoalDeposit || plan.Action.GoalID != "g1" {
		t.Errorf("action = %+v", plan.Action)
	}
	if got := DepositSuggestion("Viagem"); got != "adicione 100 na meta Viagem" {
		t.Errorf("DepositSuggestion() = %q", got)
	}
}

func TestParseDeposit(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantValue float64
		wantGoal  string
	}{
		{name: "bare meta", input: "meta 500", wantOK: true, wantValue: 500},
		{name: "aporte with goal", input: "aporte 200 na meta Viagem", wantOK: true, wantValue: 200, wantGoal: "Viagem"},
		{name: "suggested input", input: "adicione 100 na meta Casa própria", wantOK: true, wantValue: 100, wantGoal: "Casa própria"},
		{name: "aplicar with connector", input: "aplicar 1.500,50 na meta da reserva", wantOK: true, wantValue: 1500.5, wantGoal: "reserva"},
		{name: "number not right after trigger", input: "quero guardar 5000 para a meta viagem", wantOK: false},
		{name: "adicionar without goal words", input: "adicionar 50 no mercado", wantOK: false},
		{name: "plain expense", input: "gastei 50", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := ParseDeposit(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDeposit(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if req.Amount.Float() != tt.wantValue || !req.Valid() {
				t.Errorf("amount = %v", req.Amount.Float())
			}
			if req.GoalName != tt.wantGoal {
				t.Errorf("GoalName = %q, want %q", req.GoalName, tt.wantGoal)
			}
		})
	}
}

func TestFindGoal(t *testing.T) {
	goals := []domain.Goal{
		{ID: "1", Title: "Viagem Japão"},
		{ID: "2", Title: "Reserva"},
	}

	if g, ok := FindGoal(goals, ""); !ok || g.ID != "1" {
		t.Errorf("empty name should pick first goal, got %+v", g)
	}
	if g, ok := FindGoal(goals, "reserva"); !ok || g.ID != "2" {
		t.Errorf("FindGoal(reserva) = %+v", g)
	}
	if g, ok := FindGoal(goals, "japao"); !ok || g.ID != "1" {
		t.Errorf("FindGoal(japao) = %+v", g)
	}
	if _, ok := FindGoal(goals, "carro"); ok {
		t.Error("FindGoal(carro) should fail")
	}
	if _, ok := FindGoal(nil, ""); ok {
		t.Error("FindGoal on empty list should fail")
	}
}

func TestApplyDeposit(t *testing.T) {
	tests := []struct {
		name     string
		goal     domain.Goal
		value    float64
		wantProg int
	}{
		{name: "half plus 200", goal: domain.Goal{Target: 1000, Progress: 50}, value: 200, wantProg: 70},
		{name: "caps at 100", goal: domain.Goal{Target: 1000, Progress: 90}, value: 500, wantProg: 100},
		{name: "rounds", goal: domain.Goal{Target: 3000, Progress: 0}, value: 100, wantProg: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyDeposit(tt.goal, tt.value)
			if err != nil {
				t.Fatalf("ApplyDeposit: %v", err)
			}
			if got.Progress != tt.wantProg {
				t.Errorf("Progress = %d, want %d", got.Progress, tt.wantProg)
			}
		})
	}

	if _, err := ApplyDeposit(domain.Goal{Target: 0}, 10); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
	if got := DepositDescription(domain.Goal{Title: "Casa"}); got != "Aporte meta: Casa" {
		t.Errorf("DepositDescription() = %q", got)
	}
}

func TestImpactNote(t *testing.T) {
	tx := domain.Transaction{Amount: 50, Kind: domain.KindExpense}

	if got, want := ImpactNote(1000, tx, nil), "Saldo apos o lancamento: R$ 950,00. Sem metas ativas no momento."; got != want {
		t.Errorf("ImpactNote() = %q, want %q", got, want)
	}

	goals := []domain.Goal{{Title: "Viagem", Target: 6000, Progress: 42}, {Title: "Casa", Target: 1, Progress: 1}}
	income := domain.Transaction{Amount: 200, Kind: domain.KindIncome}
	want := "Saldo apos o lancamento: R$ 1.200,00. Meta em foco: Viagem com 42% concluida. Faltam R$ 3.480,00."
	if got := ImpactNote(1000, income, goals); got != want {
		t.Errorf("ImpactNote() = %q, want %q", got, want)
	}
}
