// Package mock provides test doubles for coach interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/coach"
)

// Interface compliance check.
var _ coach.Provider = (*Provider)(nil)

// Provider is a test double for coach.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req coach.Request) (coach.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req coach.Request) (coach.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Returning wraps s in a Provider that records the last request it saw.
func Returning(s coach.Stream, got *coach.Request) *Provider {
	return &Provider{
		StreamFn: func(_ context.Context, req coach.Request) (coach.Stream, error) {
			if got != nil {
				*got = req
			}
			return s, nil
		},
	}
}

// Rejecting returns a Provider whose Stream always fails with err.
func Rejecting(err error) *Provider {
	return &Provider{
		StreamFn: func(context.Context, coach.Request) (coach.Stream, error) {
			return nil, err
		},
	}
}
