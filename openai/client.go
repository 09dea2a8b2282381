package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/coach"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// maxErrorBody bounds how much of a rejected response is read for its description.
const maxErrorBody = 64 << 10

// Interface compliance check.
var _ coach.Provider = (*Client)(nil)

// Client implements [coach.Provider] for an OpenAI-compatible chat
// completions endpoint.
type Client struct {
	apiKey string
	cfg    config
}

type config struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	log         zerolog.Logger
	requireDone bool
	readSize    int
}

func defaultConfig() config {
	return config{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
		readSize:   defaultReadSize,
	}
}

// Option configures a [Client] or a stream created by [NewStream].
type Option func(*config)

// WithBaseURL sets the API base URL. Useful for testing with httptest and
// for self-hosted compatible servers.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// WithModel sets the default model ID used when a request names none.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithLogger sets the logger for stream diagnostics such as dropped frames.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithRequireDone makes a body that ends before the [DONE] sentinel a
// failure ([coach.ErrStreamInterrupted]) instead of a normal completion.
func WithRequireDone() Option {
	return func(c *config) { c.requireDone = true }
}

// WithReadSize sets the size of each body read. Values below 1 are ignored.
func WithReadSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// New creates a new [Client] with the given API key and options. An empty
// key sends no Authorization header, which local servers accept.
func New(apiKey string, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Client{apiKey: apiKey, cfg: cfg}
}

// Stream sends a streaming request and returns a [coach.Stream] that emits
// text deltas. A non-2xx status yields [coach.ErrTransportRejected] and a
// response without a body yields [coach.ErrNoBody]; no stream is returned
// in either case.
func (c *Client) Stream(ctx context.Context, req coach.Request) (coach.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	body, err := c.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.cfg.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("openai: %w: %w", coach.ErrTimeout, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("openai: %w", ctxErr)
		}
		return nil, fmt.Errorf("openai: %w: %w", coach.ErrTransportRejected, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("openai: %w", coach.ErrNoBody)
	}

	c.cfg.log.Debug().
		Str("model", c.model(req)).
		Int("status", resp.StatusCode).
		Msg("stream opened")
	return newStream(ctx, resp.Body, c.cfg), nil
}

func (c *Client) model(req coach.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.cfg.model
}

func (c *Client) buildRequestBody(req coach.Request) ([]byte, error) {
	apiReq := apiRequest{
		Model:       c.model(req),
		Messages:    convertMessages(req.SystemPrompt, req.Messages),
		Stream:      true,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	return json.Marshal(apiReq)
}

// convertMessages flattens the conversation into chat messages, led by the
// system prompt. Empty assistant replies are skipped.
func convertMessages(systemPrompt string, msgs []coach.Message) []apiMessage {
	result := make([]apiMessage, 0, len(msgs)+1)
	if systemPrompt != "" {
		result = append(result, apiMessage{Role: "system", Content: systemPrompt})
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case coach.UserMessage:
			result = append(result, apiMessage{Role: "user", Content: m.Text})
		case coach.AssistantMessage:
			if m.Text == "" {
				continue
			}
			result = append(result, apiMessage{Role: "assistant", Content: m.Text})
		}
	}
	return result
}

// parseHTTPError builds the rejection error, preferring the server's own
// description, then the raw body, then the status text.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("openai: %w: HTTP %d (failed to read body: %w)", coach.ErrTransportRejected, resp.StatusCode, err)
	}
	desc := http.StatusText(resp.StatusCode)
	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String && msg.Str != "" {
		desc = msg.Str
	} else if text := strings.TrimSpace(string(body)); text != "" {
		desc = text
	}
	if desc == "" {
		desc = "request failed"
	}
	return fmt.Errorf("openai: %w: HTTP %d: %s", coach.ErrTransportRejected, resp.StatusCode, desc)
}
