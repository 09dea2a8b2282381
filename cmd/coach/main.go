// Command coach is a terminal chat with an AI fitness coach.
//
// Usage:
//
//	coach [flags]                 open the chat window
//	coach ask [flags] <message>   stream one reply to stdout
//	coach serve [flags]           serve the offline coach over HTTP
//	coach config [flags]          print the resolved configuration
//
// The provider is picked from --provider, or detected from OPENAI_API_KEY
// and GEMINI_API_KEY. With neither key set the built-in offline coach
// answers. Settings are read from flags, COACH_* environment variables, a
// .env file in the working directory and $XDG_CONFIG_HOME/coach/config.yaml,
// in that order of precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "coach: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Variables already in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coach",
		Short:         "Chat with an AI fitness coach",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runChat,
	}

	f := root.PersistentFlags()
	f.String(flagConfig, "", "config file (default $XDG_CONFIG_HOME/coach/config.yaml)")
	f.String(flagProvider, "", "provider: openai, gemini, offline (detected from API keys if omitted)")
	f.String(flagAPIKey, "", "API key (overrides the provider's environment variable)")
	f.String(flagBaseURL, "", "API base URL for OpenAI-compatible servers")
	f.String(flagModel, "", "model ID (provider default if omitted)")
	f.Int(flagMaxTokens, 0, "reply length cap in tokens (0 for provider default)")
	f.Float64(flagTemperature, 0, "sampling temperature")
	f.Duration(flagTimeout, 0, "per-reply timeout, e.g. 90s (0 disables)")
	f.Bool(flagRequireDone, false, "treat a stream that ends without [DONE] as interrupted")
	f.String(flagSession, "", "session file (default $XDG_DATA_HOME/coach/session.json)")
	f.String(flagPrompt, "", "file replacing the built-in system prompt")
	f.String(flagNotes, "", "directory of markdown notes appended to the system prompt")
	f.String(flagLogLevel, "", "log level: trace, debug, info, warn, error, disabled")
	f.String(flagLogFile, "", "write JSON logs to this file")

	root.AddCommand(newChatCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())

	return root
}
