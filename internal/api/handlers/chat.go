package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/api/middleware"
	"github.com/dvloznov/finance-chat/internal/chat"
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/jobs"
	"github.com/dvloznov/finance-chat/internal/session"
)

// ChatHandler handles message and action endpoints.
type ChatHandler struct {
	sessions  *session.Manager
	engine    *chat.Engine
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewChatHandler creates a new chat handler. With a nil publisher,
// forwarded messages are answered synchronously.
func NewChatHandler(sessions *session.Manager, engine *chat.Engine, publisher jobs.Publisher, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		sessions:  sessions,
		engine:    engine,
		publisher: publisher,
		log:       log,
	}
}

type messageRequest struct {
	Type  domain.MessageType `json:"type"`
	Text  string             `json:"text"`
	Audio *domain.AudioBody  `json:"audio,omitempty"`
}

type replyResponse struct {
	Intent     string           `json:"intent,omitempty"`
	Messages   []domain.Message `json:"messages"`
	Suggestion string           `json:"suggestion,omitempty"`
	JobID      string           `json:"job_id,omitempty"`
}

func newReplyResponse(reply chat.Reply) replyResponse {
	resp := replyResponse{
		Messages:   reply.Messages,
		Suggestion: reply.Suggestion,
	}
	if reply.Intent != 0 {
		resp.Intent = reply.Intent.String()
	}
	if resp.Messages == nil {
		resp.Messages = []domain.Message{}
	}
	return resp
}

// PostMessage handles POST /api/sessions/{id}/messages
//
// Commands and transactions are answered inline with 200. Free text that
// needs the assistant is queued as a job and answered with 202 and the
// job ID; the reply lands in the transcript once the job completes.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()

	if req.Type == domain.MessageTypeAudio {
		if req.Audio == nil || req.Audio.URL == "" {
			middleware.WriteError(w, http.StatusBadRequest, "audio.audio_url is required")
			return
		}
		reply := h.engine.HandleAudio(sess, *req.Audio)
		middleware.WriteJSON(w, http.StatusOK, newReplyResponse(reply))
		return
	}

	if trimmed(req.Text) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply := h.engine.Handle(ctx, sess, req.Text)
	if !reply.Forwarded() {
		middleware.WriteJSON(w, http.StatusOK, newReplyResponse(reply))
		return
	}

	if h.publisher != nil {
		job := &jobs.AssistantJob{
			SessionID: sess.ID,
			Prompt:    reply.Prompt,
		}
		err := h.publisher.PublishAssistantJob(ctx, job)
		if err == nil {
			h.log.Info().Str("job_id", job.JobID).Str("session_id", sess.ID).Msg("Assistant job enqueued")

			resp := newReplyResponse(reply)
			resp.JobID = job.JobID
			middleware.WriteJSON(w, http.StatusAccepted, resp)
			return
		}
		h.log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to enqueue assistant job, answering inline")
	}

	reply.Messages = append(reply.Messages, h.engine.Ask(ctx, sess, reply.Prompt, nil))
	middleware.WriteJSON(w, http.StatusOK, newReplyResponse(reply))
}

// PostAction handles POST /api/sessions/{id}/actions
func (h *ChatHandler) PostAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r, h.sessions)
	if !ok {
		return
	}

	var action domain.Action
	if !decodeJSON(w, r, &action) {
		return
	}

	reply, err := h.engine.HandleAction(sess, action)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, newReplyResponse(reply))
	case errors.Is(err, chat.ErrUnknownAction):
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unknown action: %s", action.Kind))
	case errors.Is(err, session.ErrDraftNotFound):
		middleware.WriteError(w, http.StatusNotFound, "No pending goal draft")
	default:
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to run action")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to run action")
	}
}

// AssistantJobHandler answers queued assistant jobs. The reply is appended
// to the session transcript and copied onto the job.
func AssistantJobHandler(sessions *session.Manager, engine *chat.Engine, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.AssistantJob) error {
		sess, ok := sessions.Get(job.SessionID)
		if !ok {
			return fmt.Errorf("AssistantJobHandler: session %s not found", job.SessionID)
		}

		log.Info().
			Str("job_id", job.JobID).
			Str("session_id", job.SessionID).
			Msg("Processing assistant job")

		msg := engine.Ask(ctx, sess, job.Prompt, nil)
		job.Reply = msg.Text()
		job.MessageID = msg.ID

		log.Info().
			Str("job_id", job.JobID).
			Str("session_id", job.SessionID).
			Msg("Assistant job completed")
		return nil
	}
}
