package mock

import (
	"io"
	"strings"

	"github.com/fwojciec/coach"
)

// Interface compliance check.
var _ coach.Stream = (*Stream)(nil)

// Stream is a test double for coach.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because callers always defer Close.
type Stream struct {
	NextFn    func() (coach.Event, error)
	StateFn   func() coach.StreamState
	MessageFn func() (coach.AssistantMessage, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (coach.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() coach.StreamState {
	if s.StateFn == nil {
		return coach.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (coach.AssistantMessage, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Deltas returns a Stream that emits each delta in turn and then ends with
// final (io.EOF for a normal completion). Message reflects the deltas read
// so far, and Close is recorded in Closed.
func Deltas(final error, deltas ...string) *Scripted {
	sc := &Scripted{deltas: deltas, final: final}
	sc.Stream = Stream{
		NextFn:    sc.next,
		StateFn:   func() coach.StreamState { return sc.state },
		MessageFn: sc.message,
		CloseFn: func() error {
			sc.Closed = true
			if !sc.state.Terminal() {
				sc.state = coach.StreamStateClosed
			}
			return nil
		},
	}
	return sc
}

// Scripted is a Stream driven by a fixed list of deltas.
type Scripted struct {
	Stream
	Closed bool

	deltas []string
	final  error
	pos    int
	state  coach.StreamState
	text   strings.Builder
}

func (sc *Scripted) next() (coach.Event, error) {
	if sc.state.Terminal() {
		if sc.state == coach.StreamStateComplete {
			return nil, io.EOF
		}
		return nil, sc.final
	}
	if sc.pos < len(sc.deltas) {
		d := sc.deltas[sc.pos]
		sc.pos++
		sc.state = coach.StreamStateStreaming
		sc.text.WriteString(d)
		return coach.EventTextDelta{Delta: d}, nil
	}
	if sc.final == nil || sc.final == io.EOF {
		sc.state = coach.StreamStateComplete
		return nil, io.EOF
	}
	sc.state = coach.StreamStateError
	return nil, sc.final
}

func (sc *Scripted) message() (coach.AssistantMessage, error) {
	msg := coach.AssistantMessage{Text: sc.text.String()}
	switch sc.state {
	case coach.StreamStateNew:
		return coach.AssistantMessage{}, coach.ErrStreamNotReady
	case coach.StreamStateComplete:
		msg.StopReason = coach.StopEndTurn
	case coach.StreamStateError:
		msg.StopReason = coach.StopError
	case coach.StreamStateClosed:
		msg.StopReason = coach.StopAborted
	}
	return msg, nil
}
