package coach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Handler receives the outcome of one streamed reply. Nil fields are skipped.
//
// OnDelta is called once per delta in arrival order. Exactly one of
// OnComplete and OnFail is called per stream, unless the caller cancels the
// context, in which case neither is. No callback fires after the terminal one.
// Callbacks run synchronously on the goroutine draining the stream.
type Handler struct {
	OnDelta    func(delta string)
	OnComplete func()
	OnFail     func(err error)
}

// Accumulator forwards deltas to a Handler and finalizes the reply exactly
// once. It is not safe for concurrent use; each stream gets its own.
type Accumulator struct {
	h     Handler
	state StreamState
	text  strings.Builder
}

// NewAccumulator creates an Accumulator in StreamStateNew.
func NewAccumulator(h Handler) *Accumulator {
	return &Accumulator{h: h}
}

// State returns the accumulator's state.
func (a *Accumulator) State() StreamState { return a.state }

// Text returns all deltas received so far, concatenated.
func (a *Accumulator) Text() string { return a.text.String() }

// Start moves a new accumulator into StreamStateStreaming. Drain calls it
// once the first event has been read. It is a no-op in any other state.
func (a *Accumulator) Start() {
	if a.state == StreamStateNew {
		a.state = StreamStateStreaming
	}
}

// Delta records and forwards a delta. Ignored once terminal.
func (a *Accumulator) Delta(delta string) {
	if a.state.Terminal() {
		return
	}
	a.state = StreamStateStreaming
	a.text.WriteString(delta)
	if a.h.OnDelta != nil {
		a.h.OnDelta(delta)
	}
}

// Complete finalizes the reply successfully. It reports whether OnComplete
// fired; false means a terminal state was already reached.
func (a *Accumulator) Complete() bool {
	if a.state.Terminal() {
		return false
	}
	a.state = StreamStateComplete
	if a.h.OnComplete != nil {
		a.h.OnComplete()
	}
	return true
}

// Fail finalizes the reply with err. It reports whether OnFail fired.
func (a *Accumulator) Fail(err error) bool {
	if a.state.Terminal() {
		return false
	}
	a.state = StreamStateError
	if a.h.OnFail != nil {
		a.h.OnFail(err)
	}
	return true
}

// Cancel silences the accumulator without firing any callback.
func (a *Accumulator) Cancel() {
	if !a.state.Terminal() {
		a.state = StreamStateClosed
	}
}

// Consume requests a reply from p and drains it into h. It returns the
// assembled message (partial on failure, zero if the request was rejected)
// and the terminal error, nil on completion.
//
// A rejected request reports OnFail without ever streaming. Cancelling ctx
// stops further reads and silences h; an expired deadline reports OnFail
// with ErrTimeout.
func Consume(ctx context.Context, p Provider, req Request, h Handler) (AssistantMessage, error) {
	acc := NewAccumulator(h)

	s, err := p.Stream(ctx, req)
	if err != nil {
		return AssistantMessage{}, acc.finish(ctx, err)
	}
	defer s.Close()

	streamErr := Drain(ctx, s, acc)

	msg, msgErr := s.Message()
	if msgErr != nil {
		// Nothing was read: fall back to what the accumulator saw.
		msg = AssistantMessage{Text: acc.Text(), StopReason: StopError, RawStopReason: "error"}
	}
	if streamErr != nil && acc.State() == StreamStateClosed {
		msg.StopReason = StopAborted
		msg.RawStopReason = "aborted"
	}
	return msg, streamErr
}

// Drain pulls s until it ends, forwarding events to acc. It returns nil on
// completion, the context error on cancellation, or the stream failure.
func Drain(ctx context.Context, s Stream, acc *Accumulator) error {
	for {
		if err := ctx.Err(); err != nil {
			return acc.finish(ctx, err)
		}
		evt, err := s.Next()
		if err == io.EOF {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return acc.finish(ctx, ctxErr)
			}
			acc.Complete()
			return nil
		}
		if err != nil {
			return acc.finish(ctx, err)
		}
		// The read may have returned after the caller gave up.
		if err := ctx.Err(); err != nil {
			return acc.finish(ctx, err)
		}
		acc.Start()
		switch e := evt.(type) {
		case EventTextDelta:
			acc.Delta(e.Delta)
		}
	}
}

// finish maps err to the terminal callback. Cancellation is silent, an
// expired deadline becomes ErrTimeout.
func (a *Accumulator) finish(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		a.Cancel()
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		if !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
	}
	a.Fail(err)
	return err
}
