package canned

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	completionsPath = "/v1/chat/completions"
	defaultModel    = "coach-offline"
	defaultMaxChunk = 48
	maxRequestBody  = 1 << 20
)

// Server streams canned replies as chat.completion.chunk events.
//
// The event stream is cut into writes of random length, so frames, JSON
// payloads and multi-byte characters regularly straddle writes. Keep-alive
// comments and CRLF line endings are mixed in at random as well.
type Server struct {
	log      zerolog.Logger
	delay    time.Duration
	maxChunk int

	mu  sync.Mutex
	rnd *rand.Rand

	registry *prometheus.Registry
	metrics  *metrics
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSeed makes chunking and fallback choice reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Server) { s.rnd = rand.New(rand.NewPCG(seed, seed>>1|1)) }
}

// WithDelay pauses between writes, imitating a model producing tokens.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithMaxChunk bounds the size of each write. Values below 1 are ignored.
func WithMaxChunk(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxChunk = n
		}
	}
}

// NewServer creates a Server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		log:      zerolog.Nop(),
		maxChunk: defaultMaxChunk,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		registry: prometheus.NewRegistry(),
	}
	for _, o := range opts {
		o(s)
	}
	s.metrics = newMetrics(s.registry)
	return s
}

// Handler returns the HTTP handler: the completions endpoint and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+completionsPath, s.handleCompletions)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return withRequestLogging(mux, s.log)
}

// Registry exposes the server's metrics for embedding in another registry.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.reject(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.reject(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if !gjson.ValidBytes(body) {
		s.reject(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	req := gjson.ParseBytes(body)
	var input string
	if users := req.Get(`messages.#(role=="user")#.content`).Array(); len(users) > 0 {
		input = users[len(users)-1].String()
	}
	if strings.TrimSpace(input) == "" {
		s.reject(w, http.StatusBadRequest, "no user message")
		return
	}
	model := req.Get("model").String()
	if model == "" {
		model = defaultModel
	}

	rnd := s.newRand()
	text, matched := match(input)
	kind := "keyword"
	if !matched {
		text = fallbacks[rnd.IntN(len(fallbacks))]
		kind = "fallback"
	}
	s.metrics.replies.WithLabelValues(kind).Inc()

	id := "chatcmpl-" + uuid.NewString()
	out := render(id, model, text, rnd)
	log := s.log.With().Str("id", id).Str("reply", kind).Logger()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	s.metrics.requests.WithLabelValues("200").Inc()

	var writes int
	for len(out) > 0 {
		n := min(1+rnd.IntN(s.maxChunk), len(out))
		if _, err := w.Write(out[:n]); err != nil {
			log.Debug().Err(err).Msg("client went away")
			return
		}
		flusher.Flush()
		s.metrics.bytes.Add(float64(n))
		out = out[n:]
		writes++

		if s.delay > 0 && len(out) > 0 {
			t := time.NewTimer(s.delay)
			select {
			case <-t.C:
			case <-r.Context().Done():
				t.Stop()
				log.Debug().Msg("client went away")
				return
			}
		}
	}
	s.metrics.duration.Observe(time.Since(start).Seconds())
	log.Debug().Int("writes", writes).Int("chars", len(text)).Msg("reply streamed")
}

// newRand derives a per-request source so concurrent requests do not share
// one generator.
func (s *Server) newRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewPCG(s.rnd.Uint64(), s.rnd.Uint64()))
}

func (s *Server) reject(w http.ResponseWriter, status int, msg string) {
	s.metrics.requests.WithLabelValues(fmt.Sprint(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Message: msg, Type: "invalid_request_error"}})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type completionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// render encodes the whole event stream for text: a role frame, one frame
// per word, a finish frame and the [DONE] sentinel.
func render(id, model, text string, rnd *rand.Rand) []byte {
	var b bytes.Buffer
	created := time.Now().Unix()
	frame := func(d chunkDelta, finish *string) {
		payload, _ := json.Marshal(completionChunk{
			ID:      id,
			Object:  "chat.completion.chunk",
			Created: created,
			Model:   model,
			Choices: []chunkChoice{{Delta: d, FinishReason: finish}},
		})
		eol := "\n"
		if rnd.IntN(3) == 0 {
			eol = "\r\n"
		}
		b.WriteString("data: ")
		b.Write(payload)
		b.WriteString(eol + eol)
	}

	frame(chunkDelta{Role: "assistant"}, nil)
	for _, word := range strings.SplitAfter(text, " ") {
		if word == "" {
			continue
		}
		if rnd.IntN(5) == 0 {
			b.WriteString(": keep-alive\n\n")
		}
		frame(chunkDelta{Content: word}, nil)
	}
	stop := "stop"
	frame(chunkDelta{}, &stop)
	b.WriteString("data: [DONE]\n\n")
	return b.Bytes()
}
