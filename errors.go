package coach

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamNotReady indicates Message() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// Terminal stream failures. Each one ends a stream and is reported to the
// caller exactly once. Malformed frames are not in this list: they are
// dropped inside the stream and never surface.
var (
	// ErrTransportRejected indicates the initial response signalled failure
	// (non-2xx status) before any streaming began.
	ErrTransportRejected = errors.New("request rejected")

	// ErrNoBody indicates a successful response that carries no byte stream.
	ErrNoBody = errors.New("response has no body")

	// ErrStreamInterrupted indicates the transport failed mid-stream.
	ErrStreamInterrupted = errors.New("stream interrupted")

	// ErrTimeout indicates a caller-supplied deadline expired mid-stream.
	ErrTimeout = errors.New("stream timed out")

	// ErrUpstream indicates the server reported an error inside the stream.
	ErrUpstream = errors.New("upstream error")
)
