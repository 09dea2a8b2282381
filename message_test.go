package coach_test

import (
	"testing"
	"time"

	"github.com/fwojciec/coach"
	"github.com/stretchr/testify/assert"
)

func TestMessageTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	messages := []coach.Message{
		coach.UserMessage{Text: "Suggest a workout", Timestamp: time.Now()},
		coach.AssistantMessage{Text: "Try squats.", StopReason: coach.StopEndTurn},
	}
	for _, msg := range messages {
		switch msg.(type) {
		case coach.UserMessage:
		case coach.AssistantMessage:
		default:
			t.Fatalf("unexpected message type: %T", msg)
		}
	}
}

func TestMessage_Role(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		msg  coach.Message
		want coach.Role
	}{
		{"UserMessage", coach.UserMessage{}, coach.RoleUser},
		{"AssistantMessage", coach.AssistantMessage{}, coach.RoleAssistant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.msg.Role())
		})
	}
}
