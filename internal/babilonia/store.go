package babilonia

import (
	"fmt"
	"sync"
)

// Store keeps one profile per session. Profiles are independent of the chat
// session state and start from zero values.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{profiles: make(map[string]*Profile)}
}

// profile returns the stored profile, creating it on first use.
// Callers must hold the write lock.
func (s *Store) profile(sessionID string) *Profile {
	p, ok := s.profiles[sessionID]
	if !ok {
		p = &Profile{}
		s.profiles[sessionID] = p
	}
	return p
}

// Snapshot returns a copy of the session's profile.
func (s *Store) Snapshot(sessionID string) Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[sessionID]
	if !ok {
		return Profile{}
	}
	return p.Clone()
}

// Update sets a single field and returns the updated profile.
func (s *Store) Update(sessionID, field string, value any) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile(sessionID)
	if err := p.SetField(field, value); err != nil {
		return p.Clone(), fmt.Errorf("Update: %w", err)
	}
	return p.Clone(), nil
}

// UpdateMany applies several fields at once. Unknown names are skipped and
// reported together in the returned error.
func (s *Store) UpdateMany(sessionID string, fields map[string]any) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile(sessionID)
	var unknown []string
	for name, value := range fields {
		if err := p.SetField(name, value); err != nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return p.Clone(), fmt.Errorf("UpdateMany: %v: %w", unknown, ErrUnknownField)
	}
	return p.Clone(), nil
}

// AddExpense prepends a classified item. Empty descriptions and
// non-positive amounts are ignored; ok reports whether the item was added.
func (s *Store) AddExpense(sessionID, description string, amount float64) (item ExpenseItem, ok bool) {
	item = NewExpenseItem(description, amount)
	if item.Description == "" || amount <= 0 {
		return ExpenseItem{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile(sessionID)
	p.Expenses = append([]ExpenseItem{item}, p.Expenses...)
	return item, true
}

// RemoveExpense deletes an item by ID.
func (s *Store) RemoveExpense(sessionID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[sessionID]
	if !ok {
		return false
	}
	for i, e := range p.Expenses {
		if e.ID == id {
			p.Expenses = append(p.Expenses[:i:i], p.Expenses[i+1:]...)
			return true
		}
	}
	return false
}

// Delete drops the session's profile.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, sessionID)
}
