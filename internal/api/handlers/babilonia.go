package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/api/middleware"
	"github.com/dvloznov/finance-chat/internal/babilonia"
	"github.com/dvloznov/finance-chat/internal/session"
)

// BabiloniaHandler serves the staged wealth-building profile of a session.
type BabiloniaHandler struct {
	sessions *session.Manager
	profiles *babilonia.Store
	log      zerolog.Logger
}

// NewBabiloniaHandler creates a new babilonia handler.
func NewBabiloniaHandler(sessions *session.Manager, profiles *babilonia.Store, log zerolog.Logger) *BabiloniaHandler {
	return &BabiloniaHandler{
		sessions: sessions,
		profiles: profiles,
		log:      log,
	}
}

type babiloniaResponse struct {
	Profile    babilonia.Profile    `json:"profile"`
	Evaluation babilonia.Evaluation `json:"evaluation"`
	Planning   babilonia.Planning   `json:"planning"`
}

func newBabiloniaResponse(p babilonia.Profile) babiloniaResponse {
	return babiloniaResponse{
		Profile:    p,
		Evaluation: babilonia.Evaluate(p),
		Planning:   babilonia.Plan(p),
	}
}

// GetProfile handles GET /api/sessions/{id}/babilonia
func (h *BabiloniaHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, newBabiloniaResponse(h.profiles.Snapshot(sess.ID)))
}

// UpdateProfile handles PATCH /api/sessions/{id}/babilonia
//
// The body maps profile field names to values. Numbers may be sent as
// strings; unparsable values become 0.
func (h *BabiloniaHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}

	p, err := h.profiles.UpdateMany(sess.ID, fields)
	if errors.Is(err, babilonia.ErrUnknownField) {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to update profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newBabiloniaResponse(p))
}

type expenseRequest struct {
	Description string `json:"description"`
	Amount      Number `json:"amount"`
}

// AddExpense handles POST /api/sessions/{id}/babilonia/expenses
func (h *BabiloniaHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, added := h.profiles.AddExpense(sess.ID, req.Description, float64(req.Amount))
	if !added {
		middleware.WriteError(w, http.StatusBadRequest, "description and a positive amount are required")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, item)
}

// RemoveExpense handles DELETE /api/sessions/{id}/babilonia/expenses/{expenseID}
func (h *BabiloniaHandler) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	if !h.profiles.RemoveExpense(sess.ID, chi.URLParam(r, "expenseID")) {
		middleware.WriteError(w, http.StatusNotFound, "Expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
