package openai

// Decoder exports decoder for testing.
type Decoder = decoder

// NewDecoder exports newDecoder for testing.
func NewDecoder() *Decoder { return newDecoder() }

// Decode exports decode for testing.
func (d *decoder) Decode(chunk []byte, final bool) string { return d.decode(chunk, final) }

// Framer exports framer for testing.
type Framer = framer

// Push exports push for testing.
func (f *framer) Push(text string) { f.push(text) }

// Next exports next for testing.
func (f *framer) Next() (string, bool) { return f.next() }

// Finish exports finish for testing.
func (f *framer) Finish() { f.finish() }

// Frame kinds exported for testing.
const (
	FrameIgnore = int(frameIgnore)
	FrameDone   = int(frameDone)
	FrameData   = int(frameData)
)

// ParseLine exports parseLine for testing.
func ParseLine(line string) (int, string) {
	kind, payload := parseLine(line)
	return int(kind), payload
}

// Chunk exports chunk for testing.
type Chunk = chunk

// DecodeChunk exports decodeChunk for testing.
func DecodeChunk(payload string) (Chunk, bool) { return decodeChunk(payload) }
