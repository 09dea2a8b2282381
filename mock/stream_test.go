package mock_test

import (
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/coach"
	"github.com/fwojciec/coach/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Next(t *testing.T) {
	t.Parallel()
	t.Run("delegates to NextFn", func(t *testing.T) {
		t.Parallel()
		want := coach.EventTextDelta{Delta: "hello"}
		s := mock.Stream{
			NextFn: func() (coach.Event, error) {
				return want, nil
			},
		}
		got, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("returns EOF", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{
			NextFn: func() (coach.Event, error) {
				return nil, io.EOF
			},
		}
		_, err := s.Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("panics when NextFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Panics(t, func() {
			_, _ = s.Next()
		})
	})
}

func TestStream_State(t *testing.T) {
	t.Parallel()
	t.Run("delegates to StateFn", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{
			StateFn: func() coach.StreamState {
				return coach.StreamStateComplete
			},
		}
		assert.Equal(t, coach.StreamStateComplete, s.State())
	})

	t.Run("returns StreamStateNew when StateFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Equal(t, coach.StreamStateNew, s.State())
	})
}

func TestStream_Message(t *testing.T) {
	t.Parallel()
	t.Run("delegates to MessageFn", func(t *testing.T) {
		t.Parallel()
		want := coach.AssistantMessage{
			Text:       "hello",
			StopReason: coach.StopEndTurn,
		}
		s := mock.Stream{
			MessageFn: func() (coach.AssistantMessage, error) {
				return want, nil
			},
		}
		got, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when MessageFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Panics(t, func() {
			_, _ = s.Message()
		})
	})
}

func TestStream_Close(t *testing.T) {
	t.Parallel()
	t.Run("delegates to CloseFn", func(t *testing.T) {
		t.Parallel()
		called := false
		s := mock.Stream{
			CloseFn: func() error {
				called = true
				return nil
			},
		}
		err := s.Close()
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("close error")
		s := mock.Stream{
			CloseFn: func() error {
				return wantErr
			},
		}
		err := s.Close()
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("returns nil when CloseFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.NoError(t, s.Close())
	})
}

func TestDeltas(t *testing.T) {
	t.Parallel()

	t.Run("emits deltas then EOF", func(t *testing.T) {
		t.Parallel()
		s := mock.Deltas(nil, "a", "b")

		_, err := s.Message()
		assert.ErrorIs(t, err, coach.ErrStreamNotReady)

		var got []string
		for {
			evt, err := s.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			got = append(got, evt.(coach.EventTextDelta).Delta)
		}
		assert.Equal(t, []string{"a", "b"}, got)
		assert.Equal(t, coach.StreamStateComplete, s.State())

		msg, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, "ab", msg.Text)
		assert.Equal(t, coach.StopEndTurn, msg.StopReason)
	})

	t.Run("ends with final error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("reset")
		s := mock.Deltas(wantErr, "a")

		_, err := s.Next()
		require.NoError(t, err)
		_, err = s.Next()
		assert.ErrorIs(t, err, wantErr)
		_, err = s.Next()
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, coach.StreamStateError, s.State())

		msg, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, coach.StopError, msg.StopReason)
	})

	t.Run("close records and aborts", func(t *testing.T) {
		t.Parallel()
		s := mock.Deltas(nil, "a", "b")
		_, err := s.Next()
		require.NoError(t, err)
		require.NoError(t, s.Close())

		assert.True(t, s.Closed)
		assert.Equal(t, coach.StreamStateClosed, s.State())
		msg, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, coach.StopAborted, msg.StopReason)
	})
}
