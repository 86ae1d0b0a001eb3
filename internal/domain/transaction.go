package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind tells whether a ledger entry adds to or takes from the balance.
type Kind string

const (
	// KindExpense is money going out.
	KindExpense Kind = "expense"
	// KindIncome is money coming in.
	KindIncome Kind = "income"
)

// Reserved category names shared by the parser, the goal engine and analytics.
const (
	CategoryIncome = "Receita"
	CategoryGoals  = "Metas"
	CategoryOther  = "Outros"
)

// DisplayDateLayout is the pt-BR short date shown next to each entry.
const DisplayDateLayout = "02/01/2006"

// Transaction is one ledger entry.
// Entries are immutable except through the explicit correct-last and
// undo-last commands and manual edits.
type Transaction struct {
	ID          string    `json:"id"`
	Seq         uint64    `json:"seq"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Kind        Kind      `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
	Date        string    `json:"date"`
}

// NewTransaction builds an entry with a fresh ID and display date.
func NewTransaction(amount float64, category, description string, kind Kind, createdAt time.Time) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Kind:        kind,
		CreatedAt:   createdAt,
		Date:        createdAt.Format(DisplayDateLayout),
	}
}

// KindForCategory derives the entry kind from its category.
func KindForCategory(category string) Kind {
	if category == CategoryIncome {
		return KindIncome
	}
	return KindExpense
}

// IsIncome reports whether the entry is income.
func (t Transaction) IsIncome() bool {
	return t.Kind == KindIncome
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() float64 {
	if t.IsIncome() {
		return t.Amount
	}
	return -t.Amount
}

// TransactionPatch carries optional edits for a ledger entry.
type TransactionPatch struct {
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Kind        *Kind    `json:"kind,omitempty"`
}

// Apply returns t with the patch applied. Non-positive amounts are ignored.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil && *p.Amount > 0 {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Kind != nil && (*p.Kind == KindExpense || *p.Kind == KindIncome) {
		t.Kind = *p.Kind
	}
	return t
}
