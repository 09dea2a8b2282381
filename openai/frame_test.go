package openai_test

import (
	"testing"

	"github.com/fwojciec/coach/openai"
	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		kind    int
		payload string
	}{
		{"empty", "", openai.FrameIgnore, ""},
		{"whitespace only", " \t ", openai.FrameIgnore, ""},
		{"comment", ": keep-alive", openai.FrameIgnore, ""},
		{"comment that looks like data", ":data: {}", openai.FrameIgnore, ""},
		{"other field", "event: message", openai.FrameIgnore, ""},
		{"prefix without space", `data:{"a":1}`, openai.FrameIgnore, ""},
		{"done", "data: [DONE]", openai.FrameDone, ""},
		{"done with padding", "data:  [DONE]  ", openai.FrameDone, ""},
		{"payload", `data: {"a":1}`, openai.FrameData, `{"a":1}`},
		{"payload trimmed", "data:   {}\t", openai.FrameData, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kind, payload := openai.ParseLine(tt.line)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestDecodeChunk(t *testing.T) {
	t.Parallel()

	t.Run("content delta", func(t *testing.T) {
		t.Parallel()
		c, ok := openai.DecodeChunk(`{"choices":[{"delta":{"content":"Hi"}}]}`)
		assert.True(t, ok)
		assert.Equal(t, "Hi", c.Delta)
	})

	t.Run("only the first choice counts", func(t *testing.T) {
		t.Parallel()
		c, ok := openai.DecodeChunk(`{"choices":[{"delta":{"content":"a"}},{"delta":{"content":"b"}}]}`)
		assert.True(t, ok)
		assert.Equal(t, "a", c.Delta)
	})

	t.Run("missing fields yield no delta", func(t *testing.T) {
		t.Parallel()
		for _, payload := range []string{
			`{}`,
			`{"choices":[]}`,
			`{"choices":[{}]}`,
			`{"choices":[{"delta":{}}]}`,
			`{"choices":[{"delta":{"role":"assistant"}}]}`,
			`{"choices":[{"delta":{"content":null}}]}`,
			`{"choices":[{"delta":{"content":42}}]}`,
			`42`,
		} {
			c, ok := openai.DecodeChunk(payload)
			assert.True(t, ok, payload)
			assert.Empty(t, c.Delta, payload)
			assert.Empty(t, c.Error, payload)
		}
	})

	t.Run("finish reason", func(t *testing.T) {
		t.Parallel()
		c, ok := openai.DecodeChunk(`{"choices":[{"delta":{},"finish_reason":"length"}]}`)
		assert.True(t, ok)
		assert.Equal(t, "length", c.FinishReason)
	})

	t.Run("error object", func(t *testing.T) {
		t.Parallel()
		c, ok := openai.DecodeChunk(`{"error":{"message":"overloaded","type":"server_error"}}`)
		assert.True(t, ok)
		assert.Equal(t, "overloaded", c.Error)
	})

	t.Run("error string", func(t *testing.T) {
		t.Parallel()
		c, ok := openai.DecodeChunk(`{"error":"boom"}`)
		assert.True(t, ok)
		assert.Equal(t, "boom", c.Error)
	})

	t.Run("null error ignored", func(t *testing.T) {
		t.Parallel()
		c, ok := openai.DecodeChunk(`{"error":null,"choices":[{"delta":{"content":"x"}}]}`)
		assert.True(t, ok)
		assert.Empty(t, c.Error)
		assert.Equal(t, "x", c.Delta)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		for _, payload := range []string{`{"choices":[{"delta":{"content":"Hi`, `not json`, `{`} {
			_, ok := openai.DecodeChunk(payload)
			assert.False(t, ok, payload)
		}
	})
}
