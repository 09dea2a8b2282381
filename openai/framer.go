package openai

import (
	"bytes"
	"strings"
)

// framer accumulates decoded text and splits it into lines terminated by
// "\n". Whatever follows the last terminator stays buffered for the next
// push.
type framer struct {
	buf []byte
}

// push appends decoded text to the buffer.
func (f *framer) push(text string) {
	f.buf = append(f.buf, text...)
}

// next returns the oldest complete line without its terminator. A "\r"
// directly before the "\n" is stripped.
func (f *framer) next() (string, bool) {
	i := bytes.IndexByte(f.buf, '\n')
	if i < 0 {
		return "", false
	}
	line := string(f.buf[:i])
	f.buf = f.buf[i+1:]
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return strings.TrimSuffix(line, "\r"), true
}

// finish marks the end of input: a non-empty unterminated remainder becomes
// one final line for next to return.
func (f *framer) finish() {
	if len(f.buf) > 0 && f.buf[len(f.buf)-1] != '\n' {
		f.buf = append(f.buf, '\n')
	}
}
