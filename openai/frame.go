package openai

import (
	"strings"

	"github.com/tidwall/gjson"
)

type frameKind int

const (
	frameIgnore frameKind = iota // blank, comment or unrecognized field
	frameDone                    // the [DONE] sentinel
	frameData                    // a payload to decode
)

// parseLine classifies one line of the event stream and extracts its
// trimmed payload.
func parseLine(line string) (frameKind, string) {
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, ":") {
		return frameIgnore, ""
	}
	payload, ok := strings.CutPrefix(line, framePrefix)
	if !ok {
		return frameIgnore, ""
	}
	payload = strings.TrimSpace(payload)
	if payload == doneSentinel {
		return frameDone, ""
	}
	return frameData, payload
}

// continues reports whether line can be the tail of a payload that was
// broken by a raw line feed. Blank lines, comments and new frames cannot.
func continues(line string) bool {
	return strings.TrimSpace(line) != "" &&
		!strings.HasPrefix(line, ":") &&
		!strings.HasPrefix(line, "data:")
}

// chunk is the part of a chat.completion.chunk payload the stream uses.
type chunk struct {
	Delta        string
	FinishReason string
	Error        string
}

// decodeChunk parses payload. It returns false if the payload is not a
// well-formed JSON document. Missing fields are left empty.
func decodeChunk(payload string) (chunk, bool) {
	if !gjson.Valid(payload) {
		return chunk{}, false
	}
	doc := gjson.Parse(payload)

	var c chunk
	if d := doc.Get("choices.0.delta.content"); d.Type == gjson.String {
		c.Delta = d.Str
	}
	if f := doc.Get("choices.0.finish_reason"); f.Type == gjson.String {
		c.FinishReason = f.Str
	}
	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		switch {
		case e.Type == gjson.String:
			c.Error = e.Str
		case e.Get("message").String() != "":
			c.Error = e.Get("message").String()
		default:
			c.Error = e.Raw
		}
	}
	return c, true
}
