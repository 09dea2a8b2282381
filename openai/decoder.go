package openai

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decoder turns body chunks into text. A multi-byte character split across
// two chunks is carried over and emitted whole with the later chunk.
type decoder struct {
	t     transform.Transformer
	carry []byte
	dst   []byte
}

func newDecoder() *decoder {
	return &decoder{
		t:   unicode.UTF8.NewDecoder(),
		dst: make([]byte, 1024),
	}
}

// decode converts chunk, prefixed by any carried bytes, into text. With
// final set, an incomplete trailing sequence is replaced with U+FFFD rather
// than carried. Invalid bytes are always replaced, never reported.
func (d *decoder) decode(chunk []byte, final bool) string {
	src := chunk
	if len(d.carry) > 0 {
		src = append(d.carry, chunk...)
		d.carry = nil
	}

	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, final)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]
		switch err {
		case nil:
			if final {
				d.t.Reset()
			}
			return out.String()
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			d.carry = append([]byte(nil), src...)
			return out.String()
		default:
			// Unreachable with the UTF-8 decoder; skip a byte to guarantee progress.
			out.WriteRune(utf8.RuneError)
			if len(src) == 0 {
				return out.String()
			}
			src = src[1:]
		}
	}
}
