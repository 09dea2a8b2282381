package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/coach"
	"google.golang.org/genai"
)

// stream implements [coach.Stream] by pulling from the genai SDK's streaming
// iterator. One response may carry several text parts; they are queued and
// emitted one delta per Next call.
type stream struct {
	ctx  context.Context
	pull func() (*genai.GenerateContentResponse, error, bool)
	stop func()

	first    *genai.GenerateContentResponse
	hasFirst bool
	pending  []string

	state coach.StreamState
	msg   coach.AssistantMessage
	text  strings.Builder
	err   error
}

// Interface compliance check.
var _ coach.Stream = (*stream)(nil)

// NewStream returns a [coach.Stream] over an iterator of Gemini responses,
// such as the one returned by the SDK's GenerateContentStream.
func NewStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) coach.Stream {
	return newStream(ctx, seq)
}

func newStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: coach.StreamStateNew,
	}
}

// open pulls the first response. An error there means the request never
// produced a reply and is reported as a rejection.
func open(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) (*stream, error) {
	s := newStream(ctx, seq)
	resp, err, ok := s.pull()
	if ok && err != nil {
		s.stop()
		return nil, fmt.Errorf("gemini: %w", rejection(ctx, err))
	}
	if ok {
		s.first, s.hasFirst = resp, true
	}
	return s, nil
}

func (s *stream) Next() (coach.Event, error) {
	switch s.state {
	case coach.StreamStateComplete:
		return nil, io.EOF
	case coach.StreamStateError:
		return nil, s.err
	case coach.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", coach.ErrStreamClosed)
	}

	for len(s.pending) == 0 {
		if err := s.ctx.Err(); err != nil {
			s.terminate(contextError(err))
			return nil, s.err
		}
		resp, err, ok := s.nextResponse()
		if !ok {
			s.complete()
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(interruption(s.ctx, err))
			return nil, s.err
		}
		s.state = coach.StreamStateStreaming
		if err := s.handle(resp); err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}

	delta := s.pending[0]
	s.pending = s.pending[1:]
	s.text.WriteString(delta)
	return coach.EventTextDelta{Delta: delta}, nil
}

func (s *stream) nextResponse() (*genai.GenerateContentResponse, error, bool) {
	if s.hasFirst {
		resp := s.first
		s.first, s.hasFirst = nil, false
		return resp, nil, true
	}
	return s.pull()
}

// handle queues the text parts of resp. Thought parts are not part of the
// reply and are skipped.
func (s *stream) handle(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && len(resp.Candidates) == 0 {
		s.msg.RawStopReason = string(fb.BlockReason)
		return fmt.Errorf("%w: prompt blocked: %s", coach.ErrUpstream, fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought || p.Text == "" {
				continue
			}
			s.pending = append(s.pending, p.Text)
		}
	}
	if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonUnspecified {
		s.msg.RawStopReason = string(cand.FinishReason)
		s.msg.StopReason = mapFinishReason(cand.FinishReason)
	}
	return nil
}

func (s *stream) State() coach.StreamState {
	return s.state
}

func (s *stream) Message() (coach.AssistantMessage, error) {
	if s.state == coach.StreamStateNew {
		return coach.AssistantMessage{}, fmt.Errorf("gemini: %w", coach.ErrStreamNotReady)
	}
	msg := s.msg
	msg.Text = s.text.String()
	return msg, nil
}

func (s *stream) Close() error {
	if !s.state.Terminal() {
		s.state = coach.StreamStateClosed
		s.msg.StopReason = coach.StopAborted
		s.msg.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func (s *stream) complete() {
	s.state = coach.StreamStateComplete
	if s.msg.StopReason == "" {
		s.msg.StopReason = coach.StopEndTurn
	}
}

func (s *stream) terminate(err error) {
	s.state = coach.StreamStateError
	s.err = fmt.Errorf("gemini: %w", err)
	s.stop()
	if s.ctx.Err() != nil {
		s.msg.StopReason = coach.StopAborted
		s.msg.RawStopReason = "aborted"
		return
	}
	s.msg.StopReason = coach.StopError
	if s.msg.RawStopReason == "" {
		s.msg.RawStopReason = "error"
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", coach.ErrTimeout, err)
	}
	return err
}

// rejection classifies an error returned before the first response.
func rejection(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	if apiErr, ok := asAPIError(err); ok {
		return fmt.Errorf("%w: HTTP %d: %s", coach.ErrTransportRejected, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %w", coach.ErrTransportRejected, err)
}

// interruption classifies an error returned after the first response.
func interruption(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	if apiErr, ok := asAPIError(err); ok {
		return fmt.Errorf("%w: %s", coach.ErrUpstream, apiErr.Message)
	}
	return fmt.Errorf("%w: %w", coach.ErrStreamInterrupted, err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}

func mapFinishReason(r genai.FinishReason) coach.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return coach.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return coach.StopLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return coach.StopFiltered
	default:
		return coach.StopUnknown
	}
}
