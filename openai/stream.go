package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/coach"
	"github.com/rs/zerolog"
)

// maxEmptyReads bounds consecutive zero-byte reads with no error, mirroring
// bufio.Scanner's guard against misbehaving readers.
const maxEmptyReads = 100

// stream implements [coach.Stream] by parsing SSE frames from a response body.
type stream struct {
	body io.ReadCloser
	ctx  context.Context
	log  zerolog.Logger

	requireDone bool
	stopClose   func() bool

	readBuf    []byte
	dec        *decoder
	lines      framer
	eof        bool // body exhausted; framer holds the last lines
	emptyReads int

	// held is a data payload that failed to parse, kept for one more line
	// in case a raw line feed split it.
	held    string
	holding bool

	state coach.StreamState
	msg   coach.AssistantMessage
	text  strings.Builder
	err   error // terminal error, if any
}

// Interface compliance check.
var _ coach.Stream = (*stream)(nil)

// NewStream returns a [coach.Stream] that reads an event stream from body.
// Use it to consume replies fetched by a transport other than [Client].
// Only the logging and stream options apply; body must be non-nil.
//
// Cancelling ctx closes body so that a blocked read returns.
func NewStream(ctx context.Context, body io.ReadCloser, opts ...Option) coach.Stream {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return newStream(ctx, body, cfg)
}

func newStream(ctx context.Context, body io.ReadCloser, cfg config) *stream {
	return &stream{
		body:        body,
		ctx:         ctx,
		log:         cfg.log,
		requireDone: cfg.requireDone,
		stopClose:   context.AfterFunc(ctx, func() { _ = body.Close() }),
		readBuf:     make([]byte, cfg.readSize),
		dec:         newDecoder(),
		state:       coach.StreamStateNew,
	}
}

// Next reads the next text delta from the event stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (coach.Event, error) {
	switch s.state {
	case coach.StreamStateComplete:
		return nil, io.EOF
	case coach.StreamStateError:
		return nil, s.err
	case coach.StreamStateClosed:
		return nil, fmt.Errorf("openai: %w", coach.ErrStreamClosed)
	}

	for {
		line, ok := s.lines.next()
		if !ok {
			if s.eof {
				return s.end()
			}
			if err := s.fill(); err != nil {
				s.terminate(err)
				return nil, s.err
			}
			continue
		}

		evt, done, err := s.processLine(line)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if done {
			s.complete()
			return nil, io.EOF
		}
		if evt != nil {
			return evt, nil
		}
	}
}

// State returns the current stream state.
func (s *stream) State() coach.StreamState {
	return s.state
}

// Message returns the assembled AssistantMessage.
func (s *stream) Message() (coach.AssistantMessage, error) {
	if s.state == coach.StreamStateNew {
		return coach.AssistantMessage{}, fmt.Errorf("openai: %w", coach.ErrStreamNotReady)
	}
	msg := s.msg
	msg.Text = s.text.String()
	return msg, nil
}

// Close closes the underlying response body.
func (s *stream) Close() error {
	if !s.state.Terminal() {
		s.state = coach.StreamStateClosed
		s.msg.StopReason = coach.StopAborted
		s.msg.RawStopReason = "aborted"
	}
	s.stopClose()
	return s.body.Close()
}

// fill reads one chunk from the body and folds it into the framer.
func (s *stream) fill() error {
	if err := s.ctx.Err(); err != nil {
		return s.contextError(err)
	}

	n, err := s.body.Read(s.readBuf)
	if n > 0 {
		s.state = coach.StreamStateStreaming
		s.emptyReads = 0
		s.lines.push(s.dec.decode(s.readBuf[:n], false))
	}

	switch {
	case err == io.EOF:
		s.eof = true
		s.lines.push(s.dec.decode(nil, true))
		s.lines.finish()
		return nil
	case err != nil:
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return s.contextError(ctxErr)
		}
		return fmt.Errorf("%w: %w", coach.ErrStreamInterrupted, err)
	case n == 0:
		s.emptyReads++
		if s.emptyReads >= maxEmptyReads {
			return fmt.Errorf("%w: %w", coach.ErrStreamInterrupted, io.ErrNoProgress)
		}
	}
	return nil
}

func (s *stream) contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", coach.ErrTimeout, err)
	}
	return err
}

// processLine interprets one line. It returns the event to emit, if any, and
// whether the [DONE] sentinel was seen.
func (s *stream) processLine(line string) (coach.Event, bool, error) {
	if s.holding {
		held := s.held
		s.held, s.holding = "", false
		if continues(line) {
			joined := held + "\n" + line
			c, ok := decodeChunk(joined)
			if !ok {
				s.drop(joined)
				return nil, false, nil
			}
			evt, err := s.handleChunk(c)
			return evt, false, err
		}
		s.drop(held)
	}

	kind, payload := parseLine(line)
	switch kind {
	case frameDone:
		return nil, true, nil
	case frameData:
		c, ok := decodeChunk(payload)
		if !ok {
			s.held, s.holding = payload, true
			return nil, false, nil
		}
		evt, err := s.handleChunk(c)
		return evt, false, err
	default:
		return nil, false, nil
	}
}

// handleChunk records a decoded payload and returns its delta event.
func (s *stream) handleChunk(c chunk) (coach.Event, error) {
	if c.Error != "" {
		return nil, fmt.Errorf("%w: %s", coach.ErrUpstream, c.Error)
	}
	if c.FinishReason != "" {
		s.msg.RawStopReason = c.FinishReason
		s.msg.StopReason = mapFinishReason(c.FinishReason)
	}
	if c.Delta == "" {
		return nil, nil
	}
	s.text.WriteString(c.Delta)
	return coach.EventTextDelta{Delta: c.Delta}, nil
}

// end finalizes a stream whose body ended without the sentinel.
func (s *stream) end() (coach.Event, error) {
	if s.holding {
		s.drop(s.held)
		s.held, s.holding = "", false
	}
	if s.requireDone {
		s.terminate(fmt.Errorf("%w: unexpected end of stream", coach.ErrStreamInterrupted))
		return nil, s.err
	}
	s.complete()
	return nil, io.EOF
}

func (s *stream) complete() {
	s.state = coach.StreamStateComplete
	if s.msg.StopReason == "" {
		s.msg.StopReason = coach.StopEndTurn
	}
}

// terminate records a terminal error and sets the appropriate state and stop reason.
func (s *stream) terminate(err error) {
	s.state = coach.StreamStateError
	s.err = fmt.Errorf("openai: %w", err)
	if s.ctx.Err() != nil {
		s.msg.StopReason = coach.StopAborted
		s.msg.RawStopReason = "aborted"
	} else {
		s.msg.StopReason = coach.StopError
		s.msg.RawStopReason = "error"
	}
}

func (s *stream) drop(payload string) {
	const maxLogged = 256
	if len(payload) > maxLogged {
		payload = payload[:maxLogged]
	}
	s.log.Debug().Str("payload", payload).Msg("dropping malformed frame")
}

func mapFinishReason(raw string) coach.StopReason {
	switch raw {
	case "stop":
		return coach.StopEndTurn
	case "length":
		return coach.StopLength
	case "content_filter":
		return coach.StopFiltered
	default:
		return coach.StopUnknown
	}
}
