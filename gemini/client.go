package gemini

import (
	"context"
	"fmt"
	"math"

	"github.com/fwojciec/coach"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ coach.Provider = (*Client)(nil)

// Client implements [coach.Provider] for the Google Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	baseURL string
	log     zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL points the SDK at a different endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithLogger sets the logger for stream diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		model: defaultModel,
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Stream sends a streaming request to the Gemini API. The first response is
// fetched before Stream returns, so a rejected request yields
// [coach.ErrTransportRejected] and no stream.
func (c *Client) Stream(ctx context.Context, req coach.Request) (coach.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	seq := c.client.Models.GenerateContentStream(ctx, model, ConvertMessages(req.Messages), buildConfig(req))
	s, err := open(ctx, seq)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("model", model).Msg("stream opened")
	return s, nil
}

func buildConfig(req coach.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	maxTokens = min(maxTokens, math.MaxInt32)

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}
	return config
}

// ConvertMessages converts the conversation to genai Contents. Gemini wants
// the history to open with a user turn and to alternate, so replies before
// the first user message and empty replies are dropped, and consecutive
// turns from the same side are merged.
func ConvertMessages(msgs []coach.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		var role, text string
		switch m := msg.(type) {
		case coach.UserMessage:
			role, text = "user", m.Text
		case coach.AssistantMessage:
			if len(result) == 0 || m.Text == "" {
				continue
			}
			role, text = "model", m.Text
		default:
			continue
		}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Parts = append(result[n-1].Parts, &genai.Part{Text: text})
			continue
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return result
}
