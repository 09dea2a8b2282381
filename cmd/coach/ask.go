package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/coach"
	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Stream one reply to stdout",
		Long: `Ask sends a single message in a fresh conversation and streams the
coach's reply to stdout. The saved chat session is neither read nor written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg, cmd.ErrOrStderr(), false)
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

	text := strings.Join(args, " ")
	session := coach.NewSession(prompt, "")
	cfg.Session = ""

	out := cmd.OutOrStdout()
	var wrote bool
	send := newChatFunc(coach.NewChat(provider), cfg, log)
	err = send(ctx, &session, text, func(d string) {
		wrote = true
		fmt.Fprint(out, d)
	})
	if wrote {
		fmt.Fprintln(out)
	}
	return err
}
