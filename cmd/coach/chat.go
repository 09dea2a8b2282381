package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/coach"
	bt "github.com/fwojciec/coach/bubbletea"
	"github.com/fwojciec/coach/canned"
	coachfs "github.com/fwojciec/coach/fs"
	coachjson "github.com/fwojciec/coach/json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const basePrompt = `You are an upbeat personal fitness coach. Give practical, safe advice on workouts, exercise form, nutrition and recovery.
Keep answers short. Write routines as numbered steps and end with a question that helps you tailor the next suggestion.
Suggest seeing a professional for pain, injury or medical conditions.`

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat window (the default command)",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer closer.Close()

	provider, stop, err := newProvider(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stop()

	prompt, err := systemPrompt(cfg)
	if err != nil {
		return err
	}
	session, err := openSession(cfg.Session, prompt)
	if err != nil {
		return err
	}

	send := newChatFunc(coach.NewChat(provider), cfg, log)
	m := bt.New(send, &session, coach.DefaultTheme(), bt.WithQuickPrompts(canned.QuickPrompts))
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// newChatFunc adapts Chat.Send to the chat window. Each reply gets its own
// timeout, and the session is saved after every turn, finished or not.
func newChatFunc(chat *coach.Chat, cfg Config, log zerolog.Logger) bt.ChatFunc {
	return func(ctx context.Context, s *coach.Session, text string, onDelta func(string)) error {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		opts := []coach.SendOption{coach.WithHandler(coach.Handler{OnDelta: onDelta})}
		if cfg.MaxTokens > 0 {
			opts = append(opts, coach.WithMaxTokens(cfg.MaxTokens))
		}
		if cfg.Temperature != nil {
			opts = append(opts, coach.WithTemperature(*cfg.Temperature))
		}

		err := chat.Send(ctx, s, text, opts...)
		if err != nil {
			log.Warn().Err(err).Msg("reply failed")
		}
		if cfg.Session != "" {
			if serr := coachjson.Save(cfg.Session, *s); serr != nil {
				log.Error().Err(serr).Str("path", cfg.Session).Msg("save session")
			}
		}
		return err
	}
}

// openSession resumes the conversation stored at path, or starts one with
// the coach's greeting. An empty path keeps the conversation in memory.
func openSession(path, prompt string) (coach.Session, error) {
	if path == "" {
		return coach.NewSession(prompt, canned.Greeting), nil
	}
	s, err := coachjson.LoadOrNew(path, prompt, canned.Greeting)
	if err != nil {
		return coach.Session{}, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// systemPrompt is the built-in prompt, or the --prompt file, followed by any
// notes found in the notes directory.
func systemPrompt(cfg Config) (string, error) {
	base := basePrompt
	if cfg.Prompt != "" {
		data, err := os.ReadFile(cfg.Prompt)
		if err != nil {
			return "", fmt.Errorf("read system prompt: %w", err)
		}
		base = strings.TrimSpace(string(data))
	}
	if cfg.Notes == "" {
		return base, nil
	}
	notes, err := coachfs.LoadDir(cfg.Notes, cfg.NotesPattern)
	if err != nil {
		return "", fmt.Errorf("load notes: %w", err)
	}
	return coachfs.Prompt(base, notes), nil
}
