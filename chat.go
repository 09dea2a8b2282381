package coach

import (
	"context"
	"slices"
	"time"
)

// Chat runs conversation turns against a Provider, recording both sides of
// each exchange in the caller's Session.
type Chat struct {
	provider Provider
}

// NewChat creates a new Chat backed by provider.
func NewChat(provider Provider) *Chat {
	return &Chat{provider: provider}
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	handler     Handler
	model       string
	maxTokens   int
	temperature *float64
}

// WithHandler sets the callbacks that observe the streamed reply.
func WithHandler(h Handler) SendOption {
	return func(c *sendConfig) {
		c.handler = h
	}
}

// WithModel sets the model ID for the request.
// Empty string means the provider uses its default model.
func WithModel(model string) SendOption {
	return func(c *sendConfig) {
		c.model = model
	}
}

// WithMaxTokens caps the length of the reply. Zero means provider default.
func WithMaxTokens(n int) SendOption {
	return func(c *sendConfig) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) SendOption {
	return func(c *sendConfig) {
		c.temperature = &t
	}
}

// Send appends text as a user message, streams the coach's reply through the
// configured Handler and appends the reply to session.
//
// A reply that fails after some text arrived is kept as a partial message
// with StopError (or StopAborted on cancellation). A rejected request adds
// no assistant message.
func (c *Chat) Send(ctx context.Context, session *Session, text string, opts ...SendOption) error {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	user := UserMessage{Text: text, Timestamp: time.Now()}
	req := Request{
		Model:        cfg.model,
		SystemPrompt: session.SystemPrompt,
		Messages:     append(slices.Clip(session.Messages), user),
		MaxTokens:    cfg.maxTokens,
		Temperature:  cfg.temperature,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	session.Append(user)

	msg, err := Consume(ctx, c.provider, req, cfg.handler)
	if err == nil || msg.Text != "" {
		msg.Timestamp = time.Now()
		session.Append(msg)
	}
	return err
}
