package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Long: `Config prints every setting after flags, environment, .env and the config
file have been applied. API keys are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(settings(cfg)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

// settings flattens cfg into config-file keys, with secrets masked.
func settings(cfg Config) map[string]any {
	m := map[string]any{
		"provider":       cfg.Provider,
		"api_key":        cfg.APIKey,
		"openai_api_key": cfg.OpenAIAPIKey,
		"gemini_api_key": cfg.GeminiAPIKey,
		"base_url":       cfg.BaseURL,
		"model":          cfg.Model,
		"max_tokens":     cfg.MaxTokens,
		"timeout":        cfg.Timeout.String(),
		"require_done":   cfg.RequireDone,
		"session":        cfg.Session,
		"prompt":         cfg.Prompt,
		"notes":          cfg.Notes,
		"notes_pattern":  cfg.NotesPattern,
		"log_level":      cfg.LogLevel,
		"log_file":       cfg.LogFile,
		"addr":           cfg.Addr,
		"delay":          cfg.Delay.String(),
		"seed":           cfg.Seed,
	}
	if cfg.Temperature != nil {
		m["temperature"] = *cfg.Temperature
	}
	for k, v := range m {
		if s, ok := v.(string); ok && s != "" && secret(k) {
			m[k] = mask(s)
		}
	}
	return m
}

func mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
