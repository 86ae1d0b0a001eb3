package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/analytics"
	"github.com/dvloznov/finance-chat/internal/api/middleware"
	"github.com/dvloznov/finance-chat/internal/reports"
	"github.com/dvloznov/finance-chat/internal/session"
)

// DashboardHandler serves derived panels and the month-close export.
type DashboardHandler struct {
	sessions  *session.Manager
	publisher reports.Publisher
	log       zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler. A nil publisher
// disables export; the report is then returned inline only.
func NewDashboardHandler(sessions *session.Manager, publisher reports.Publisher, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		sessions:  sessions,
		publisher: publisher,
		log:       log,
	}
}

// GetDashboard handles GET /api/sessions/{id}/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	middleware.WriteJSON(w, http.StatusOK, analytics.BuildDashboard(snap.Entries, snap.Goals, sess.Now()))
}

// ExportMonthClose handles POST /api/sessions/{id}/month-close/export
func (h *DashboardHandler) ExportMonthClose(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	report := reports.Build(sess.Snapshot(), sess.Now())

	if h.publisher == nil {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"report":   report,
			"exported": false,
		})
		return
	}

	uri, err := h.publisher.Publish(r.Context(), report)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to export month-close report")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to export report")
		return
	}

	h.log.Info().Str("session_id", sess.ID).Str("uri", uri).Msg("Month-close report exported")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"report":   report,
		"exported": true,
		"uri":      uri,
	})
}
