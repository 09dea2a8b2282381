package coach

import "time"

// Role identifies who sent a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason records how a reply ended.
type StopReason string

const (
	StopEndTurn  StopReason = "end_turn"
	StopLength   StopReason = "length"
	StopFiltered StopReason = "filtered"
	StopError    StopReason = "error"
	StopAborted  StopReason = "aborted"
	StopUnknown  StopReason = "unknown"
)

// Message is one turn of a conversation: either a [UserMessage] or an
// [AssistantMessage]. The set is closed.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage is what the athlete typed.
type UserMessage struct {
	Text      string
	Timestamp time.Time
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage is a finished (or abandoned) coach reply. RawStopReason
// keeps the provider's own finish value when it did not map cleanly.
type AssistantMessage struct {
	Text          string
	StopReason    StopReason
	RawStopReason string
	Timestamp     time.Time
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// Event is something a [Stream] yields. Only text deltas exist today; a
// failure arrives as the error from Next, never as an event.
type Event interface {
	event()
}

// EventTextDelta carries the next fragment of reply text.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
	_ Event   = EventTextDelta{}
)
