package coach_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/coach"
	"github.com/fwojciec/coach/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_Send(t *testing.T) {
	t.Parallel()

	t.Run("records both sides", func(t *testing.T) {
		t.Parallel()
		var got coach.Request
		chat := coach.NewChat(mock.Returning(mock.Deltas(nil, "Try ", "squats."), &got))
		session := coach.NewSession("You are a coach.", "Hey!")

		var deltas []string
		err := chat.Send(context.Background(), &session, "Suggest a workout",
			coach.WithModel("coach-mini"),
			coach.WithMaxTokens(300),
			coach.WithTemperature(0.5),
			coach.WithHandler(coach.Handler{OnDelta: func(d string) { deltas = append(deltas, d) }}),
		)
		require.NoError(t, err)

		assert.Equal(t, []string{"Try ", "squats."}, deltas)
		assert.Equal(t, "coach-mini", got.Model)
		assert.Equal(t, 300, got.MaxTokens)
		require.NotNil(t, got.Temperature)
		assert.InDelta(t, 0.5, *got.Temperature, 1e-9)
		assert.Equal(t, "You are a coach.", got.SystemPrompt)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "Suggest a workout", got.Messages[1].(coach.UserMessage).Text)

		require.Len(t, session.Messages, 3)
		reply, ok := session.Messages[2].(coach.AssistantMessage)
		require.True(t, ok)
		assert.Equal(t, "Try squats.", reply.Text)
		assert.Equal(t, coach.StopEndTurn, reply.StopReason)
		assert.False(t, reply.Timestamp.IsZero())
	})

	t.Run("partial reply kept on failure", func(t *testing.T) {
		t.Parallel()
		chat := coach.NewChat(mock.Returning(mock.Deltas(coach.ErrStreamInterrupted, "Try "), nil))
		session := coach.NewSession("", "")

		err := chat.Send(context.Background(), &session, "workout?")
		assert.ErrorIs(t, err, coach.ErrStreamInterrupted)
		require.Len(t, session.Messages, 2)
		reply := session.Messages[1].(coach.AssistantMessage)
		assert.Equal(t, "Try ", reply.Text)
		assert.Equal(t, coach.StopError, reply.StopReason)
	})

	t.Run("rejected request adds no reply", func(t *testing.T) {
		t.Parallel()
		chat := coach.NewChat(mock.Rejecting(errors.New("HTTP 500")))
		session := coach.NewSession("", "")

		var failed bool
		err := chat.Send(context.Background(), &session, "hi",
			coach.WithHandler(coach.Handler{OnFail: func(error) { failed = true }}))
		require.Error(t, err)
		assert.True(t, failed)
		require.Len(t, session.Messages, 1)
		assert.Equal(t, coach.RoleUser, session.Messages[0].Role())
	})

	t.Run("invalid input leaves session untouched", func(t *testing.T) {
		t.Parallel()
		called := false
		chat := coach.NewChat(&mock.Provider{
			StreamFn: func(context.Context, coach.Request) (coach.Stream, error) {
				called = true
				return nil, nil
			},
		})
		session := coach.NewSession("", "Hey!")

		err := chat.Send(context.Background(), &session, "")
		assert.ErrorIs(t, err, coach.ErrValidation)
		assert.False(t, called)
		assert.Len(t, session.Messages, 1)
	})

	t.Run("does not alias session history", func(t *testing.T) {
		t.Parallel()
		var got coach.Request
		chat := coach.NewChat(mock.Returning(mock.Deltas(nil, "ok"), &got))
		session := coach.Session{Messages: make([]coach.Message, 0, 8)}

		require.NoError(t, chat.Send(context.Background(), &session, "first"))
		assert.Len(t, got.Messages, 1)
		assert.Len(t, session.Messages, 2)
	})
}
