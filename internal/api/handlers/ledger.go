package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/api/middleware"
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/session"
)

// LedgerHandler handles manual edits of transactions, goals and agenda items.
type LedgerHandler struct {
	sessions *session.Manager
	log      zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(sessions *session.Manager, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		sessions: sessions,
		log:      log,
	}
}

// ListTransactions handles GET /api/sessions/{id}/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	// Newest first.
	middleware.WriteJSON(w, http.StatusOK, sess.Entries())
}

type transactionRequest struct {
	Amount      Number      `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Kind        domain.Kind `json:"kind"`
}

// CreateTransaction handles POST /api/sessions/{id}/transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	category := trimmed(req.Category)
	if category == "" {
		category = domain.CategoryOther
	}
	kind := req.Kind
	if kind != domain.KindIncome && kind != domain.KindExpense {
		kind = domain.KindForCategory(category)
	}
	description := trimmed(req.Description)
	if description == "" {
		description = category
	}

	tx := domain.NewTransaction(float64(req.Amount), category, description, kind, sess.Now())
	stored, _ := sess.Record(tx)

	h.log.Info().Str("session_id", sess.ID).Str("transaction_id", stored.ID).Msg("Transaction created")

	middleware.WriteJSON(w, http.StatusCreated, stored)
}

type transactionPatchRequest struct {
	Amount      *Number      `json:"amount"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Kind        *domain.Kind `json:"kind"`
}

func (p transactionPatchRequest) patch() domain.TransactionPatch {
	out := domain.TransactionPatch{
		Category:    p.Category,
		Description: p.Description,
		Kind:        p.Kind,
	}
	if p.Amount != nil {
		v := float64(*p.Amount)
		out.Amount = &v
	}
	return out
}

// UpdateTransaction handles PATCH /api/sessions/{id}/transactions/{txID}
func (h *LedgerHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req transactionPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	tx, err := sess.UpdateTransaction(chi.URLParam(r, "txID"), req.patch())
	if errors.Is(err, session.ErrTransactionNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/sessions/{id}/transactions/{txID}
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	if err := sess.RemoveTransaction(chi.URLParam(r, "txID")); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGoals handles GET /api/sessions/{id}/goals
func (h *LedgerHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sess.Goals())
}

type goalRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Target   Number `json:"target"`
	Progress Number `json:"progress"`
}

// CreateGoal handles POST /api/sessions/{id}/goals
func (h *LedgerHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	title := trimmed(req.Title)
	if title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Target <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "target must be positive")
		return
	}

	g := sess.AddGoal(domain.NewGoal(title, req.Category, float64(req.Target), int(req.Progress)))

	h.log.Info().Str("session_id", sess.ID).Str("goal_id", g.ID).Msg("Goal created")

	middleware.WriteJSON(w, http.StatusCreated, g)
}

type goalPatchRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Target   *Number `json:"target"`
	Progress *Number `json:"progress"`
}

func (p goalPatchRequest) patch() domain.GoalPatch {
	out := domain.GoalPatch{
		Title:    p.Title,
		Category: p.Category,
	}
	if p.Target != nil {
		v := float64(*p.Target)
		out.Target = &v
	}
	if p.Progress != nil {
		v := int(*p.Progress)
		out.Progress = &v
	}
	return out
}

// UpdateGoal handles PATCH /api/sessions/{id}/goals/{goalID}
func (h *LedgerHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req goalPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Target != nil && *req.Target <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "target must be positive")
		return
	}

	g, err := sess.UpdateGoal(chi.URLParam(r, "goalID"), req.patch())
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, g)
}

// DeleteGoal handles DELETE /api/sessions/{id}/goals/{goalID}
func (h *LedgerHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	if err := sess.RemoveGoal(chi.URLParam(r, "goalID")); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAgenda handles GET /api/sessions/{id}/agenda
func (h *LedgerHandler) ListAgenda(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sess.Agenda())
}

type agendaRequest struct {
	Title  string `json:"title"`
	Due    string `json:"due"`
	Amount Number `json:"amount"`
}

// CreateAgendaItem handles POST /api/sessions/{id}/agenda
func (h *LedgerHandler) CreateAgendaItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req agendaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	title := trimmed(req.Title)
	if title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	item := sess.AddAgendaItem(domain.NewAgendaItem(title, trimmed(req.Due), float64(req.Amount)))
	middleware.WriteJSON(w, http.StatusCreated, item)
}

// DeleteAgendaItem handles DELETE /api/sessions/{id}/agenda/{itemID}
func (h *LedgerHandler) DeleteAgendaItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	if err := sess.RemoveAgendaItem(chi.URLParam(r, "itemID")); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Agenda item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
