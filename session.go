package coach

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a conversation session. Messages is an append-only log
// owned by the caller; the streaming pipeline never touches it.
type Session struct {
	ID           string
	Messages     []Message
	SystemPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSession creates a session with a fresh ID. A non-empty greeting is
// recorded as the opening assistant message.
func NewSession(systemPrompt, greeting string) Session {
	now := time.Now()
	s := Session{
		ID:           uuid.NewString(),
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if greeting != "" {
		s.Messages = append(s.Messages, AssistantMessage{
			Text:       greeting,
			StopReason: StopEndTurn,
			Timestamp:  now,
		})
	}
	return s
}

// Append adds msg to the end of the log and bumps UpdatedAt.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}
