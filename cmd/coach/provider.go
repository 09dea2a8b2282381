package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/coach"
	"github.com/fwojciec/coach/canned"
	"github.com/fwojciec/coach/gemini"
	"github.com/fwojciec/coach/openai"
	"github.com/rs/zerolog"
)

const (
	providerOpenAI  = "openai"
	providerGemini  = "gemini"
	providerOffline = "offline"
)

const shutdownTimeout = 5 * time.Second

// selectProvider picks the backend and its key. An explicit provider wins;
// otherwise the one whose key is set is used, and the offline coach when
// neither is. --api-key overrides the provider's own variable.
func selectProvider(cfg Config) (name, key string, err error) {
	name = cfg.Provider
	if name == "" {
		hasOpenAI := cfg.OpenAIAPIKey != ""
		hasGemini := cfg.GeminiAPIKey != ""
		switch {
		case hasOpenAI && hasGemini:
			return "", "", errors.New("multiple API keys found (OPENAI_API_KEY, GEMINI_API_KEY): use --provider to select")
		case hasOpenAI:
			name = providerOpenAI
		case hasGemini:
			name = providerGemini
		default:
			name = providerOffline
		}
	}

	key = cfg.APIKey
	switch name {
	case providerOpenAI:
		if key == "" {
			key = cfg.OpenAIAPIKey
		}
		// Self-hosted compatible servers often run without auth.
		if key == "" && cfg.BaseURL == "" {
			return "", "", errors.New("OPENAI_API_KEY not set (use --api-key or the environment)")
		}
	case providerGemini:
		if key == "" {
			key = cfg.GeminiAPIKey
		}
		if key == "" {
			return "", "", errors.New("GEMINI_API_KEY not set (use --api-key or the environment)")
		}
	case providerOffline:
		key = ""
	default:
		return "", "", fmt.Errorf("unknown provider %q: must be openai, gemini or offline", name)
	}
	return name, key, nil
}

// newProvider constructs the selected provider. The returned stop function
// releases whatever the provider started and is always safe to call.
func newProvider(ctx context.Context, cfg Config, log zerolog.Logger) (coach.Provider, func(), error) {
	name, key, err := selectProvider(cfg)
	if err != nil {
		return nil, func() {}, err
	}
	log.Info().Str("provider", name).Str("model", cfg.Model).Msg("provider selected")

	switch name {
	case providerOpenAI:
		return openai.New(key, openaiOptions(cfg, log)...), func() {}, nil

	case providerGemini:
		opts := []gemini.Option{gemini.WithLogger(log)}
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, func() {}, err
		}
		return client, func() {}, nil

	default:
		return startOffline(cfg, log)
	}
}

func openaiOptions(cfg Config, log zerolog.Logger) []openai.Option {
	opts := []openai.Option{openai.WithLogger(log)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.RequireDone {
		opts = append(opts, openai.WithRequireDone())
	}
	return opts
}

// startOffline runs the canned server on a loopback port and points an
// OpenAI client at it, so offline replies take the same streaming path as
// real ones.
func startOffline(cfg Config, log zerolog.Logger) (coach.Provider, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, func() {}, fmt.Errorf("offline coach: %w", err)
	}
	srv := &http.Server{
		Handler:           newCannedServer(cfg, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("offline coach stopped")
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}

	local := cfg
	local.BaseURL = "http://" + ln.Addr().String()
	local.RequireDone = true
	return openai.New("", openaiOptions(local, log)...), stop, nil
}

func newCannedServer(cfg Config, log zerolog.Logger) *canned.Server {
	opts := []canned.Option{
		canned.WithLogger(log),
		canned.WithDelay(cfg.Delay),
	}
	if cfg.Seed != 0 {
		opts = append(opts, canned.WithSeed(cfg.Seed))
	}
	return canned.NewServer(opts...)
}
