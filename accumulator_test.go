package coach_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fwojciec/coach"
	"github.com/fwojciec/coach/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures callbacks in the order they fire.
type recorder struct {
	events []string
	errs   []error
}

func (r *recorder) handler() coach.Handler {
	return coach.Handler{
		OnDelta:    func(d string) { r.events = append(r.events, "delta:"+d) },
		OnComplete: func() { r.events = append(r.events, "complete") },
		OnFail: func(err error) {
			r.events = append(r.events, "fail")
			r.errs = append(r.errs, err)
		},
	}
}

func userRequest() coach.Request {
	return coach.Request{Messages: []coach.Message{coach.UserMessage{Text: "hi"}}}
}

func TestAccumulator_ExactlyOneTerminal(t *testing.T) {
	t.Parallel()

	t.Run("complete then fail", func(t *testing.T) {
		t.Parallel()
		var r recorder
		acc := coach.NewAccumulator(r.handler())
		acc.Start()
		acc.Delta("a")
		assert.True(t, acc.Complete())
		assert.False(t, acc.Fail(errors.New("late")))
		assert.False(t, acc.Complete())
		acc.Delta("b")

		assert.Equal(t, []string{"delta:a", "complete"}, r.events)
		assert.Equal(t, "a", acc.Text())
		assert.Equal(t, coach.StreamStateComplete, acc.State())
	})

	t.Run("fail then complete", func(t *testing.T) {
		t.Parallel()
		var r recorder
		acc := coach.NewAccumulator(r.handler())
		assert.True(t, acc.Fail(coach.ErrNoBody))
		assert.False(t, acc.Complete())

		assert.Equal(t, []string{"fail"}, r.events)
		assert.Equal(t, coach.StreamStateError, acc.State())
	})

	t.Run("cancel silences", func(t *testing.T) {
		t.Parallel()
		var r recorder
		acc := coach.NewAccumulator(r.handler())
		acc.Start()
		acc.Cancel()
		acc.Delta("a")
		assert.False(t, acc.Complete())
		assert.False(t, acc.Fail(errors.New("x")))

		assert.Empty(t, r.events)
		assert.Equal(t, coach.StreamStateClosed, acc.State())
	})

	t.Run("nil callbacks are skipped", func(t *testing.T) {
		t.Parallel()
		acc := coach.NewAccumulator(coach.Handler{})
		acc.Delta("a")
		assert.True(t, acc.Complete())
	})
}

func TestAccumulator_Start(t *testing.T) {
	t.Parallel()
	acc := coach.NewAccumulator(coach.Handler{})
	assert.Equal(t, coach.StreamStateNew, acc.State())
	acc.Start()
	assert.Equal(t, coach.StreamStateStreaming, acc.State())
	acc.Complete()
	acc.Start()
	assert.Equal(t, coach.StreamStateComplete, acc.State())
}

func TestDrain_StreamingStartsOnFirstEvent(t *testing.T) {
	t.Parallel()
	acc := coach.NewAccumulator(coach.Handler{})

	var seen []coach.StreamState
	events := []coach.Event{coach.EventTextDelta{Delta: "Warm up."}}
	s := &mock.Stream{
		NextFn: func() (coach.Event, error) {
			seen = append(seen, acc.State())
			if len(events) == 0 {
				return nil, io.EOF
			}
			evt := events[0]
			events = events[1:]
			return evt, nil
		},
	}

	require.NoError(t, coach.Drain(context.Background(), s, acc))
	assert.Equal(t, []coach.StreamState{coach.StreamStateNew, coach.StreamStateStreaming}, seen)
	assert.Equal(t, coach.StreamStateComplete, acc.State())
}

func TestConsume_FailsBeforeFirstEvent(t *testing.T) {
	t.Parallel()
	var r recorder
	failed := errors.New("connection reset")
	s := &mock.Stream{
		NextFn:    func() (coach.Event, error) { return nil, failed },
		MessageFn: func() (coach.AssistantMessage, error) { return coach.AssistantMessage{}, coach.ErrNoBody },
	}

	msg, err := coach.Consume(context.Background(), mock.Returning(s, nil), userRequest(), r.handler())
	require.ErrorIs(t, err, failed)
	assert.Equal(t, []string{"fail"}, r.events)
	assert.Equal(t, coach.StopError, msg.StopReason)
}

func TestConsume(t *testing.T) {
	t.Parallel()

	t.Run("completes", func(t *testing.T) {
		t.Parallel()
		var r recorder
		s := mock.Deltas(nil, "Hi", " there")

		msg, err := coach.Consume(context.Background(), mock.Returning(s, nil), userRequest(), r.handler())
		require.NoError(t, err)
		assert.Equal(t, []string{"delta:Hi", "delta: there", "complete"}, r.events)
		assert.Equal(t, "Hi there", msg.Text)
		assert.Equal(t, coach.StopEndTurn, msg.StopReason)
		assert.True(t, s.Closed)
	})

	t.Run("empty reply completes", func(t *testing.T) {
		t.Parallel()
		var r recorder
		msg, err := coach.Consume(context.Background(), mock.Returning(mock.Deltas(nil), nil), userRequest(), r.handler())
		require.NoError(t, err)
		assert.Equal(t, []string{"complete"}, r.events)
		assert.Empty(t, msg.Text)
	})

	t.Run("rejected request", func(t *testing.T) {
		t.Parallel()
		var r recorder
		rejected := errors.New("HTTP 401")
		msg, err := coach.Consume(context.Background(), mock.Rejecting(rejected), userRequest(), r.handler())
		assert.ErrorIs(t, err, rejected)
		assert.Equal(t, []string{"fail"}, r.events)
		assert.Equal(t, coach.AssistantMessage{}, msg)
	})

	t.Run("interrupted keeps partial text", func(t *testing.T) {
		t.Parallel()
		var r recorder
		s := mock.Deltas(coach.ErrStreamInterrupted, "Hi")

		msg, err := coach.Consume(context.Background(), mock.Returning(s, nil), userRequest(), r.handler())
		assert.ErrorIs(t, err, coach.ErrStreamInterrupted)
		assert.Equal(t, []string{"delta:Hi", "fail"}, r.events)
		require.Len(t, r.errs, 1)
		assert.ErrorIs(t, r.errs[0], coach.ErrStreamInterrupted)
		assert.Equal(t, "Hi", msg.Text)
		assert.Equal(t, coach.StopError, msg.StopReason)
	})

	t.Run("cancel before start is silent", func(t *testing.T) {
		t.Parallel()
		var r recorder
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := mock.Deltas(nil, "Hi")

		msg, err := coach.Consume(ctx, mock.Returning(s, nil), userRequest(), r.handler())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, r.events)
		assert.Equal(t, coach.StopAborted, msg.StopReason)
	})

	t.Run("cancel mid-stream is silent", func(t *testing.T) {
		t.Parallel()
		var r recorder
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s := mock.Deltas(nil, "a", "b", "c")
		h := r.handler()
		onDelta := h.OnDelta
		h.OnDelta = func(d string) {
			onDelta(d)
			cancel()
		}

		msg, err := coach.Consume(ctx, mock.Returning(s, nil), userRequest(), h)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"delta:a"}, r.events)
		assert.Equal(t, "a", msg.Text)
		assert.Equal(t, coach.StopAborted, msg.StopReason)
	})

	t.Run("deadline fails with timeout", func(t *testing.T) {
		t.Parallel()
		var r recorder
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		_, err := coach.Consume(ctx, mock.Returning(mock.Deltas(nil, "a"), nil), userRequest(), r.handler())
		assert.ErrorIs(t, err, coach.ErrTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, []string{"fail"}, r.events)
		assert.ErrorIs(t, r.errs[0], coach.ErrTimeout)
	})

	t.Run("rejection by deadline maps to timeout", func(t *testing.T) {
		t.Parallel()
		var r recorder
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		_, err := coach.Consume(ctx, mock.Rejecting(context.DeadlineExceeded), userRequest(), r.handler())
		assert.ErrorIs(t, err, coach.ErrTimeout)
		assert.Equal(t, []string{"fail"}, r.events)
	})

	t.Run("message unavailable falls back to accumulated text", func(t *testing.T) {
		t.Parallel()
		s := &mock.Stream{
			NextFn: func() (coach.Event, error) { return nil, io.ErrUnexpectedEOF },
			MessageFn: func() (coach.AssistantMessage, error) {
				return coach.AssistantMessage{}, coach.ErrStreamNotReady
			},
		}
		msg, err := coach.Consume(context.Background(), mock.Returning(s, nil), userRequest(), coach.Handler{})
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Equal(t, coach.StopError, msg.StopReason)
		assert.Empty(t, msg.Text)
	})
}
