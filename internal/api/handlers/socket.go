package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/chat"
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/session"
)

// ClientMessage is a frame sent by the chat client.
type ClientMessage struct {
	Type    string            `json:"type"` // message, audio, action
	Content string            `json:"content,omitempty"`
	Audio   *domain.AudioBody `json:"audio,omitempty"`
	Action  *domain.Action    `json:"action,omitempty"`
}

// ServerMessage is a frame sent to the chat client.
type ServerMessage struct {
	Type       string          `json:"type"` // text, text_chunk, complete, error
	Content    string          `json:"content,omitempty"`
	Message    *domain.Message `json:"message,omitempty"`
	Intent     string          `json:"intent,omitempty"`
	Suggestion string          `json:"suggestion,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
}

// ChatSocket serves the realtime chat over a websocket. Assistant answers
// are streamed chunk by chunk.
type ChatSocket struct {
	sessions *session.Manager
	engine   *chat.Engine
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewChatSocket creates a websocket chat handler.
func NewChatSocket(sessions *session.Manager, engine *chat.Engine, log zerolog.Logger) *ChatSocket {
	return &ChatSocket{
		sessions: sessions,
		engine:   engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// ServeHTTP handles GET /ws?session=<id>. Without a session parameter a new
// session is created; its ID is sent with every complete event.
func (s *ChatSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var sess *session.Session
	if id := r.URL.Query().Get("session"); id != "" {
		var ok bool
		sess, ok = s.sessions.Get(id)
		if !ok {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	} else {
		sess = s.sessions.Create()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.With().Str("session_id", sess.ID).Logger()
	log.Info().Msg("WebSocket connected")

	ctx := r.Context()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError(conn, "Invalid message format")
			continue
		}

		log.Debug().Str("type", msg.Type).Msg("Received message")

		switch msg.Type {
		case "message":
			if trimmed(msg.Content) == "" {
				s.sendError(conn, "Empty message")
				continue
			}
			s.handleMessage(ctx, conn, sess, msg.Content)

		case "audio":
			if msg.Audio == nil {
				s.sendError(conn, "Missing audio payload")
				continue
			}
			s.sendReply(conn, sess, s.engine.HandleAudio(sess, *msg.Audio))

		case "action":
			if msg.Action == nil {
				s.sendError(conn, "Missing action payload")
				continue
			}
			reply, err := s.engine.HandleAction(sess, *msg.Action)
			if err != nil {
				s.sendError(conn, err.Error())
				continue
			}
			s.sendReply(conn, sess, reply)

		default:
			s.sendError(conn, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}

	log.Info().Msg("WebSocket disconnected")
}

func (s *ChatSocket) handleMessage(ctx context.Context, conn *websocket.Conn, sess *session.Session, content string) {
	reply := s.engine.Handle(ctx, sess, content)
	if reply.Forwarded() {
		answer := s.engine.Ask(ctx, sess, reply.Prompt, func(chunk string) {
			if chunk != "" {
				s.send(conn, ServerMessage{Type: "text_chunk", Content: chunk})
			}
		})
		reply.Messages = append(reply.Messages, answer)
	}
	s.sendReply(conn, sess, reply)
}

func (s *ChatSocket) sendReply(conn *websocket.Conn, sess *session.Session, reply chat.Reply) {
	for i := range reply.Messages {
		m := reply.Messages[i]
		s.send(conn, ServerMessage{Type: "text", Content: m.Text(), Message: &m})
	}
	done := ServerMessage{
		Type:       "complete",
		Suggestion: reply.Suggestion,
		SessionID:  sess.ID,
	}
	if reply.Intent != 0 {
		done.Intent = reply.Intent.String()
	}
	s.send(conn, done)
}

func (s *ChatSocket) send(conn *websocket.Conn, msg ServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn().Err(err).Msg("Failed to send message")
	}
}

func (s *ChatSocket) sendError(conn *websocket.Conn, content string) {
	s.send(conn, ServerMessage{Type: "error", Content: content})
}
