// Package openai implements [coach.Provider] for OpenAI-compatible chat
// completion endpoints.
//
// Replies arrive as server-sent events: "data: <json>" lines, ":" comments,
// blank separators and a final "data: [DONE]". The stream folds each body
// chunk through a pipeline of small stages (UTF-8 decoder, line framer,
// frame parser) and hands text deltas to the caller one at a time through
// the pull-based [coach.Stream] interface.
package openai

const (
	defaultBaseURL  = "https://api.openai.com"
	defaultModel    = "gpt-4o-mini"
	defaultReadSize = 4096
	completionsPath = "/v1/chat/completions"

	// framePrefix marks an event line. The space is significant.
	framePrefix = "data: "
	// doneSentinel is the payload that ends a stream normally.
	doneSentinel = "[DONE]"
)

// apiRequest is the JSON body sent to the chat completions endpoint.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
