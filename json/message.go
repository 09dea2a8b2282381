package json

import (
	"fmt"
	"time"

	"github.com/fwojciec/coach"
)

// messageDTO is the JSON representation of a Message with a type discriminator.
type messageDTO struct {
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	StopReason    string    `json:"stop_reason,omitempty"`
	RawStopReason string    `json:"raw_stop_reason,omitempty"`
}

func marshalMessage(msg coach.Message) (messageDTO, error) {
	switch m := msg.(type) {
	case coach.UserMessage:
		return messageDTO{
			Type:      string(coach.RoleUser),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}, nil
	case coach.AssistantMessage:
		return messageDTO{
			Type:          string(coach.RoleAssistant),
			Text:          m.Text,
			Timestamp:     m.Timestamp,
			StopReason:    string(m.StopReason),
			RawStopReason: m.RawStopReason,
		}, nil
	default:
		return messageDTO{}, fmt.Errorf("unknown message type: %T", msg)
	}
}

func unmarshalMessage(dto messageDTO) (coach.Message, error) {
	switch coach.Role(dto.Type) {
	case coach.RoleUser:
		return coach.UserMessage{
			Text:      dto.Text,
			Timestamp: dto.Timestamp,
		}, nil
	case coach.RoleAssistant:
		return coach.AssistantMessage{
			Text:          dto.Text,
			StopReason:    coach.StopReason(dto.StopReason),
			RawStopReason: dto.RawStopReason,
			Timestamp:     dto.Timestamp,
		}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", dto.Type)
	}
}
