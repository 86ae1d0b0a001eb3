// Package session holds the mutable per-user state: ledger, goals, agenda,
// the pending goal draft and the chat transcript. Every command takes the
// session lock, so concurrent callers always act on the latest state.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/goals"
)

var (
	ErrEmptyLedger         = errors.New("ledger is empty")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrDraftNotFound       = errors.New("goal draft not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAgendaItemNotFound  = errors.New("agenda item not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Session is one user's in-memory state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	now        func() time.Time
	ledger     *domain.Ledger
	goals      []domain.Goal // goals[0] is the focus goal
	agenda     []domain.AgendaItem
	draft      *domain.GoalDraft
	transcript []domain.Message
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID       string               `json:"id"`
	Entries  []domain.Transaction `json:"entries"`
	Goals    []domain.Goal        `json:"goals"`
	Agenda   []domain.AgendaItem  `json:"agenda"`
	Draft    *domain.GoalDraft    `json:"draft,omitempty"`
	Messages int                  `json:"messages"`
}

// New creates an empty session.
func New(id string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		ID:        id,
		CreatedAt: now(),
		now:       now,
		ledger:    domain.NewLedger(),
	}
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.now()
}

// Snapshot copies the whole state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:       s.ID,
		Entries:  s.ledger.Entries(),
		Goals:    append([]domain.Goal{}, s.goals...),
		Agenda:   append([]domain.AgendaItem{}, s.agenda...),
		Messages: len(s.transcript),
	}
	if s.draft != nil {
		d := *s.draft
		snap.Draft = &d
	}
	return snap
}

// Entries returns the ledger newest first.
func (s *Session) Entries() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// Recent returns up to n newest entries.
func (s *Session) Recent(n int) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Recent(n)
}

// Goals returns the tracked goals, focus goal first.
func (s *Session) Goals() []domain.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Goal{}, s.goals...)
}

// Record appends a transaction and returns it together with the balance
// the ledger had before it.
func (s *Session) Record(tx domain.Transaction) (stored domain.Transaction, balanceBefore float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balanceBefore = balance(s.ledger.Entries())
	return s.ledger.Append(tx), balanceBefore
}

// UndoLast removes the most recent entry.
func (s *Session) UndoLast() (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.ledger.RemoveLatest()
	if !ok {
		return domain.Transaction{}, fmt.Errorf("UndoLast: %w", ErrEmptyLedger)
	}
	return tx, nil
}

// CorrectLast replaces the amount of the most recent entry.
func (s *Session) CorrectLast(amount float64) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("CorrectLast: %v: %w", amount, ErrInvalidAmount)
	}
	tx, ok := s.ledger.ReplaceLatestAmount(amount)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("CorrectLast: %w", ErrEmptyLedger)
	}
	return tx, nil
}

// UpdateTransaction edits an entry by ID.
func (s *Session) UpdateTransaction(id string, patch domain.TransactionPatch) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.ledger.Update(id, patch)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: %s: %w", id, ErrTransactionNotFound)
	}
	return tx, nil
}

// RemoveTransaction deletes an entry by ID.
func (s *Session) RemoveTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.Remove(id) {
		return fmt.Errorf("RemoveTransaction: %s: %w", id, ErrTransactionNotFound)
	}
	return nil
}

// ProposeGoal stores the pending draft, replacing any earlier one.
func (s *Session) ProposeGoal(d domain.GoalDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = &d
}

// Draft returns the pending draft, if any.
func (s *Session) Draft() (domain.GoalDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return domain.GoalDraft{}, false
	}
	return *s.draft, true
}

// ConfirmDraft promotes the pending draft with the given ID. The new goal
// becomes the focus goal.
func (s *Session) ConfirmDraft(id string) (domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil || (id != "" && s.draft.ID != id) {
		return domain.Goal{}, fmt.Errorf("ConfirmDraft: %w", ErrDraftNotFound)
	}
	g := s.draft.Promote()
	s.goals = append([]domain.Goal{g}, s.goals...)
	s.draft = nil
	return g, nil
}

// CancelDraft drops the pending draft with the given ID.
func (s *Session) CancelDraft(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil || (id != "" && s.draft.ID != id) {
		return fmt.Errorf("CancelDraft: %w", ErrDraftNotFound)
	}
	s.draft = nil
	return nil
}

// AddGoal prepends a goal, making it the focus goal.
func (s *Session) AddGoal(g domain.Goal) domain.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append([]domain.Goal{g}, s.goals...)
	return g
}

// UpdateGoal edits a goal by ID.
func (s *Session) UpdateGoal(id string, patch domain.GoalPatch) (domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(id)
	if i < 0 {
		return domain.Goal{}, fmt.Errorf("UpdateGoal: %s: %w", id, ErrGoalNotFound)
	}
	s.goals[i] = patch.Apply(s.goals[i])
	return s.goals[i], nil
}

// RemoveGoal deletes a goal by ID.
func (s *Session) RemoveGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(id)
	if i < 0 {
		return fmt.Errorf("RemoveGoal: %s: %w", id, ErrGoalNotFound)
	}
	s.goals = append(s.goals[:i:i], s.goals[i+1:]...)
	return nil
}

// Deposit applies a contribution to the goal matching name and records it
// as an expense under the goals category. Nothing changes when no goal
// matches or the matched goal has no target; in the latter case the
// matched goal is returned with the error.
func (s *Session) Deposit(name string, value float64) (domain.Goal, domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := goals.FindGoal(s.goals, name)
	if !ok {
		return domain.Goal{}, domain.Transaction{}, fmt.Errorf("Deposit: %q: %w", name, ErrGoalNotFound)
	}
	updated, err := goals.ApplyDeposit(target, value)
	if err != nil {
		return target, domain.Transaction{}, fmt.Errorf("Deposit: %w", err)
	}

	s.goals[s.goalIndex(target.ID)] = updated
	tx := domain.NewTransaction(value, domain.CategoryGoals, goals.DepositDescription(updated), domain.KindExpense, s.now())
	return updated, s.ledger.Append(tx), nil
}

func (s *Session) goalIndex(id string) int {
	for i, g := range s.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// Agenda returns the agenda items.
func (s *Session) Agenda() []domain.AgendaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AgendaItem{}, s.agenda...)
}

// AddAgendaItem prepends an item.
func (s *Session) AddAgendaItem(item domain.AgendaItem) domain.AgendaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agenda = append([]domain.AgendaItem{item}, s.agenda...)
	return item
}

// RemoveAgendaItem deletes an item by ID.
func (s *Session) RemoveAgendaItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.agenda {
		if item.ID == id {
			s.agenda = append(s.agenda[:i:i], s.agenda[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("RemoveAgendaItem: %s: %w", id, ErrAgendaItemNotFound)
}

// AppendMessages adds messages to the transcript in order.
func (s *Session) AppendMessages(msgs ...domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msgs...)
}

// Messages returns the transcript oldest first.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message{}, s.transcript...)
}

func balance(entries []domain.Transaction) float64 {
	var total float64
	for _, tx := range entries {
		total += tx.Signed()
	}
	return total
}
