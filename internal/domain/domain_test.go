package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLedger_OrderAndSequence(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	l := NewLedger()

	a := l.Append(NewTransaction(10, "Lazer", "cinema", KindExpense, now))
	b := l.Append(NewTransaction(20, "Lazer", "show", KindExpense, now))

	if a.Seq >= b.Seq {
		t.Fatalf("expected increasing seq, got %d then %d", a.Seq, b.Seq)
	}

	entries := l.Entries()
	if entries[0].ID != b.ID || entries[1].ID != a.ID {
		t.Errorf("expected newest-first order")
	}

	latest, ok := l.Latest()
	if !ok || latest.ID != b.ID {
		t.Errorf("Latest() = %+v, want %s", latest, b.ID)
	}
}

func TestLedger_RemoveAndReplaceLatest(t *testing.T) {
	now := time.Now()
	l := NewLedger(
		NewTransaction(10, "Lazer", "cinema", KindExpense, now),
		NewTransaction(99, "Compras", "loja", KindExpense, now),
	)

	fixed, ok := l.ReplaceLatestAmount(45)
	if !ok || fixed.Amount != 45 || fixed.Description != "loja" {
		t.Fatalf("ReplaceLatestAmount() = %+v, %v", fixed, ok)
	}

	removed, ok := l.RemoveLatest()
	if !ok || removed.Description != "loja" {
		t.Fatalf("RemoveLatest() = %+v, %v", removed, ok)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	l.RemoveLatest()
	if _, ok := l.RemoveLatest(); ok {
		t.Error("expected RemoveLatest on empty ledger to fail")
	}
	if _, ok := l.ReplaceLatestAmount(1); ok {
		t.Error("expected ReplaceLatestAmount on empty ledger to fail")
	}
}

func TestLedger_UpdateAndRemove(t *testing.T) {
	l := NewLedger()
	tx := l.Append(NewTransaction(10, "Lazer", "cinema", KindExpense, time.Now()))

	amount := 12.5
	kind := KindIncome
	updated, ok := l.Update(tx.ID, TransactionPatch{Amount: &amount, Kind: &kind})
	if !ok || updated.Amount != 12.5 || updated.Kind != KindIncome {
		t.Fatalf("Update() = %+v, %v", updated, ok)
	}
	if updated.Seq != tx.Seq {
		t.Error("Update must keep the sequence number")
	}

	zero := 0.0
	if updated, _ = l.Update(tx.ID, TransactionPatch{Amount: &zero}); updated.Amount != 12.5 {
		t.Errorf("zero amount patch applied: %v", updated.Amount)
	}

	if !l.Remove(tx.ID) {
		t.Fatal("Remove() = false")
	}
	if l.Remove(tx.ID) {
		t.Error("second Remove() should report false")
	}
}

func TestLedger_Recent(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 7; i++ {
		l.Append(NewTransaction(float64(i), "Outros", "x", KindExpense, time.Now()))
	}
	recent := l.Recent(5)
	if len(recent) != 5 || recent[0].Amount != 6 {
		t.Errorf("Recent(5) = %+v", recent)
	}
	if got := len(l.Recent(50)); got != 7 {
		t.Errorf("Recent(50) len = %d", got)
	}
}

func TestGoal_ProgressClamp(t *testing.T) {
	g := NewGoal("Viagem", GoalTravel, 1000, 150)
	if g.Progress != 100 {
		t.Errorf("Progress = %d, want 100", g.Progress)
	}
	g = NewGoal("x", "Nope", 1000, -4)
	if g.Progress != 0 || g.Category != GoalOther {
		t.Errorf("got %+v", g)
	}

	g = NewGoal("Casa", GoalHome, 1000, 50)
	if g.Saved() != 500 || g.Remaining() != 500 {
		t.Errorf("Saved/Remaining = %v/%v", g.Saved(), g.Remaining())
	}

	p := 300
	if got := (GoalPatch{Progress: &p}).Apply(g); got.Progress != 100 {
		t.Errorf("patched progress = %d", got.Progress)
	}

	zero := 0.0
	if got := (GoalPatch{Target: &zero}).Apply(g); got.Target != 1000 {
		t.Errorf("zero target patch applied: %v", got.Target)
	}
}

func TestKindForCategory(t *testing.T) {
	if KindForCategory(CategoryIncome) != KindIncome {
		t.Error("Receita must be income")
	}
	if KindForCategory("Alimentacao") != KindExpense {
		t.Error("Alimentacao must be expense")
	}
}

func TestMessage_JSONVariants(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	text := NewTextMessage(RoleAssistant, "oi", at, Action{Label: "Salvar", Kind: ActionSaveGoal, GoalID: "g1"})
	audio := NewAudioMessage(RoleUser, AudioBody{URL: "blob:1", Duration: 3.5}, at)

	for _, msg := range []Message{text, audio} {
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		var back Message
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if back.Body.Type() != msg.Body.Type() {
			t.Errorf("type = %s, want %s", back.Body.Type(), msg.Body.Type())
		}
	}

	if text.Text() != "oi" || audio.Text() != "" {
		t.Error("Text() should only return text bodies")
	}

	var bad Message
	if err := json.Unmarshal([]byte(`{"type":"video"}`), &bad); err == nil {
		t.Error("expected error for unknown type")
	}
}
