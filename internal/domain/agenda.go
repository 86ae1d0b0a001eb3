package domain

import "github.com/google/uuid"

// AgendaItem is an upcoming bill or reminder. Informational only.
type AgendaItem struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Due    string  `json:"due"`
	Amount float64 `json:"amount"`
}

// NewAgendaItem builds an agenda item with a fresh ID.
func NewAgendaItem(title, due string, amount float64) AgendaItem {
	return AgendaItem{ID: uuid.New().String(), Title: title, Due: due, Amount: amount}
}
