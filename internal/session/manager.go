package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-chat/internal/domain"
)

// Manager creates and looks up sessions. Sessions never share state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
	seed     bool
}

// NewManager creates a manager. With seed set, new sessions start with the
// demo ledger, agenda and goals.
func NewManager(seed bool, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		now:      now,
		seed:     seed,
	}
}

// Create starts a new session with a fresh ID.
func (m *Manager) Create() *Session {
	id := uuid.New().String()
	var s *Session
	if m.seed {
		s = Seeded(id, m.now)
	} else {
		s = New(id, m.now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete drops a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// List returns all sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Seeded creates a session holding the demo data shown on first use.
func Seeded(id string, now func() time.Time) *Session {
	s := New(id, now)
	t := s.now()
	day := 24 * time.Hour

	// Appended oldest first so the newest entry is on top.
	seed := []struct {
		amount   float64
		category string
		desc     string
		age      time.Duration
	}{
		{950, domain.CategoryIncome, "recebi 950 de bonus do trabalho", 5 * day},
		{129, "Moradia", "paguei 129 de internet fibra", 4 * day},
		{180, domain.CategoryIncome, "recebi 180 de cashback do cartao", 3 * day},
		{97, "Saude", "gastei 97 na farmacia", 2 * day},
		{240, "Moradia", "paguei 240 de energia eletrica", day},
	}
	for _, e := range seed {
		tx := domain.NewTransaction(e.amount, e.category, e.desc, domain.KindForCategory(e.category), t.Add(-e.age))
		s.ledger.Append(tx)
	}

	s.agenda = []domain.AgendaItem{
		domain.NewAgendaItem("Cartao Nubank", "Vence em 6 dias", 1240),
		domain.NewAgendaItem("Aluguel", "Vence em 10 dias", 1800),
		domain.NewAgendaItem("Internet", "Vence em 12 dias", 110),
	}
	s.goals = []domain.Goal{
		domain.NewGoal("Viagem", domain.GoalTravel, 6000, 42),
		domain.NewGoal("Reserva de emergencia", domain.GoalEmergency, 12000, 38),
		domain.NewGoal("Casa", domain.GoalOther, 25000, 22),
	}
	return s
}
