package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType tags the body variant of a message.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeAudio MessageType = "audio"
)

// MessageBody is either a TextBody or an AudioBody.
type MessageBody interface {
	Type() MessageType
}

// TextBody is a plain text message.
type TextBody struct {
	Text string `json:"text"`
}

// Type implements MessageBody.
func (TextBody) Type() MessageType { return MessageTypeText }

// AudioBody is a recorded voice note.
type AudioBody struct {
	URL      string    `json:"audio_url"`
	Duration float64   `json:"duration_seconds"`
	Waveform []float64 `json:"waveform,omitempty"`
}

// Type implements MessageBody.
func (AudioBody) Type() MessageType { return MessageTypeAudio }

// ActionKind names a follow-up the user can trigger from a message.
type ActionKind string

const (
	ActionSaveGoal        ActionKind = "save-goal"
	ActionCancelGoal      ActionKind = "cancel-goal"
	ActionInitGoalDeposit ActionKind = "init-goal-deposit"
)

// Action is a button attached to an assistant message.
type Action struct {
	Label  string     `json:"label"`
	Kind   ActionKind `json:"action"`
	GoalID string     `json:"goal_id,omitempty"`
}

// Message is one entry of the chat transcript.
type Message struct {
	ID        string
	Role      Role
	Body      MessageBody
	Actions   []Action
	CreatedAt time.Time
}

// NewTextMessage builds a text message.
func NewTextMessage(role Role, text string, createdAt time.Time, actions ...Action) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Body:      TextBody{Text: text},
		Actions:   actions,
		CreatedAt: createdAt,
	}
}

// NewAudioMessage builds a voice-note message.
func NewAudioMessage(role Role, body AudioBody, createdAt time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Body:      body,
		CreatedAt: createdAt,
	}
}

// Text returns the message text, or "" for non-text bodies.
func (m Message) Text() string {
	if tb, ok := m.Body.(TextBody); ok {
		return tb.Text
	}
	return ""
}

type messageJSON struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Type      MessageType `json:"type"`
	Text      string      `json:"text,omitempty"`
	Audio     *AudioBody  `json:"audio,omitempty"`
	Actions   []Action    `json:"actions,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// MarshalJSON flattens the body variant behind a "type" tag.
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		ID:        m.ID,
		Role:      m.Role,
		Actions:   m.Actions,
		CreatedAt: m.CreatedAt,
	}
	switch body := m.Body.(type) {
	case TextBody:
		out.Type = MessageTypeText
		out.Text = body.Text
	case AudioBody:
		out.Type = MessageTypeAudio
		out.Audio = &body
	default:
		return nil, fmt.Errorf("MarshalJSON: unsupported message body %T", m.Body)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the body variant from its "type" tag.
func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("UnmarshalJSON: decode message: %w", err)
	}
	m.ID = in.ID
	m.Role = in.Role
	m.Actions = in.Actions
	m.CreatedAt = in.CreatedAt
	switch in.Type {
	case MessageTypeText, "":
		m.Body = TextBody{Text: in.Text}
	case MessageTypeAudio:
		if in.Audio == nil {
			return fmt.Errorf("UnmarshalJSON: audio message without audio payload")
		}
		m.Body = *in.Audio
	default:
		return fmt.Errorf("UnmarshalJSON: unknown message type %q", in.Type)
	}
	return nil
}
