package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/api/middleware"
	"github.com/dvloznov/finance-chat/internal/babilonia"
	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/session"
)

// Number is a lenient numeric form field: it accepts JSON numbers and
// strings such as "1.234,56" or "R$ 30". Anything unparsable is 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("Number: %w", err)
		}
		*n = Number(money.ParseNumber(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// sessionFrom resolves the {id} URL parameter, writing a 404 when unknown.
func sessionFrom(w http.ResponseWriter, r *http.Request, sessions *session.Manager) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := sessions.Get(id)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}

// SessionsHandler handles session lifecycle endpoints.
type SessionsHandler struct {
	sessions *session.Manager
	profiles *babilonia.Store
	log      zerolog.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(sessions *session.Manager, profiles *babilonia.Store, log zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		profiles: profiles,
		log:      log,
	}
}

// CreateSession handles POST /api/sessions
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()

	h.log.Info().Str("session_id", sess.ID).Msg("Session created")

	middleware.WriteJSON(w, http.StatusCreated, sess.Snapshot())
}

// ListSessions handles GET /api/sessions
func (h *SessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	list := h.sessions.List()
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sess.Snapshot())
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.sessions.Delete(id) {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}
	if h.profiles != nil {
		h.profiles.Delete(id)
	}

	h.log.Info().Str("session_id", id).Msg("Session deleted")

	w.WriteHeader(http.StatusNoContent)
}

// ListMessages handles GET /api/sessions/{id}/messages
func (h *SessionsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	msgs := sess.Messages()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
		"count":    len(msgs),
	})
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
