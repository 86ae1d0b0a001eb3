package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/assistant"
	"github.com/dvloznov/finance-chat/internal/babilonia"
	"github.com/dvloznov/finance-chat/internal/chat"
	"github.com/dvloznov/finance-chat/internal/session"
)

var refNow = time.Date(2026, time.October, 19, 15, 0, 0, 0, time.UTC)

func TestChatLoop(t *testing.T) {
	engine := chat.NewEngine(chat.Config{AssistantTimeout: time.Second, Log: zerolog.Nop()})
	sess := session.New("cli", func() time.Time { return refNow })

	in := strings.NewReader(strings.Join([]string{
		"gastei 60 no mercado",
		"quero guardar 3000 para viagem",
		"/lancar",
		"qual o melhor banco?",
		"/sair",
		"resumo",
	}, "\n"))
	var out bytes.Buffer

	if err := chatLoop(context.Background(), in, &out, engine, sess, true); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Despesa lancada",
		"digite /lancar ou /cancelar",
		"Meta registrada: ",
		assistant.UnavailableMessage,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Resumo do momento") {
		t.Error("input after /sair must not be processed")
	}
	if len(sess.Goals()) != 1 || len(sess.Entries()) != 1 {
		t.Errorf("goals = %d, entries = %d", len(sess.Goals()), len(sess.Entries()))
	}
}

func TestChatLoop_CancelWithoutDraft(t *testing.T) {
	engine := chat.NewEngine(chat.Config{Log: zerolog.Nop()})
	sess := session.New("cli", func() time.Time { return refNow })

	var out bytes.Buffer
	if err := chatLoop(context.Background(), strings.NewReader("/cancelar\n"), &out, engine, sess, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Nenhuma meta pendente.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestEvaluateProfile(t *testing.T) {
	input := `{
		"monthly_income": "5000",
		"current_savings": 600,
		"skills": "design",
		"expenses": [
			{"description": "Aluguel", "amount": 1500},
			{"description": "Cinema", "amount": "80"},
			{"description": "", "amount": 10}
		]
	}`

	res, err := evaluateProfile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("evaluateProfile: %v", err)
	}
	if res.Profile.MonthlyIncome != 5000 || res.Profile.Skills != "design" {
		t.Errorf("profile = %+v", res.Profile)
	}
	if len(res.Profile.Expenses) != 2 {
		t.Fatalf("expenses = %+v", res.Profile.Expenses)
	}
	if res.Evaluation.Stages[0].Status != babilonia.StageDone {
		t.Errorf("stage 1 = %+v", res.Evaluation.Stages[0])
	}

	if _, err := evaluateProfile(strings.NewReader(`{"shoeSize": 42}`)); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadLedger(t *testing.T) {
	input := `[
		{"amount": 950, "category": "Receita", "description": "bonus"},
		{"amount": "129,90", "category": "Moradia", "description": "internet"},
		{"amount": 0, "category": "Lazer", "description": "ignorado"}
	]`

	sess, err := loadLedger(strings.NewReader(input), "s-1", refNow)
	if err != nil {
		t.Fatalf("loadLedger: %v", err)
	}
	entries := sess.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	// Newest first.
	if entries[0].Amount != 129.9 || entries[1].Kind != "income" {
		t.Errorf("entries = %+v", entries)
	}

	if _, err := loadLedger(strings.NewReader(`{}`), "s-1", refNow); err == nil {
		t.Error("expected error for non-array ledger")
	}
}
