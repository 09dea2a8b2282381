package main

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	coachfs "github.com/fwojciec/coach/fs"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "COACH"

// Flag names.
const (
	flagConfig      = "config"
	flagProvider    = "provider"
	flagAPIKey      = "api-key"
	flagBaseURL     = "base-url"
	flagModel       = "model"
	flagMaxTokens   = "max-tokens"
	flagTemperature = "temperature"
	flagTimeout     = "timeout"
	flagRequireDone = "require-done"
	flagSession     = "session"
	flagPrompt      = "prompt"
	flagNotes       = "notes"
	flagLogLevel    = "log-level"
	flagLogFile     = "log-file"
	flagAddr        = "addr"
	flagDelay       = "delay"
	flagSeed        = "seed"
)

// Config is the resolved configuration of one command invocation.
type Config struct {
	Provider     string        `mapstructure:"provider" validate:"omitempty,oneof=openai gemini offline"`
	APIKey       string        `mapstructure:"api_key"`
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens" validate:"gte=0,lte=2147483647"`
	Temperature  *float64      `mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RequireDone  bool          `mapstructure:"require_done"`
	Session      string        `mapstructure:"session"`
	Prompt       string        `mapstructure:"prompt"`
	Notes        string        `mapstructure:"notes"`
	NotesPattern string        `mapstructure:"notes_pattern" validate:"required"`
	LogLevel     string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	LogFile      string        `mapstructure:"log_file"`
	Addr         string        `mapstructure:"addr" validate:"required,listen_addr"`
	Delay        time.Duration `mapstructure:"delay" validate:"gte=0"`
	Seed         uint64        `mapstructure:"seed"`
}

// envVar binds a config key to an environment variable outside the COACH_
// namespace.
type envVar struct {
	key      string
	name     string
	isSecret bool
}

var envVars = []envVar{
	{key: "openai_api_key", name: "OPENAI_API_KEY", isSecret: true},
	{key: "gemini_api_key", name: "GEMINI_API_KEY", isSecret: true},
}

var flagKeys = map[string]string{
	flagProvider:    "provider",
	flagAPIKey:      "api_key",
	flagBaseURL:     "base_url",
	flagModel:       "model",
	flagMaxTokens:   "max_tokens",
	flagTemperature: "temperature",
	flagTimeout:     "timeout",
	flagRequireDone: "require_done",
	flagSession:     "session",
	flagPrompt:      "prompt",
	flagNotes:       "notes",
	flagLogLevel:    "log_level",
	flagLogFile:     "log_file",
	flagAddr:        "addr",
	flagDelay:       "delay",
	flagSeed:        "seed",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "")
	v.SetDefault("api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("model", "")
	v.SetDefault("max_tokens", 0)
	v.SetDefault("timeout", 2*time.Minute)
	v.SetDefault("require_done", false)
	v.SetDefault("session", defaultSessionPath())
	v.SetDefault("prompt", "")
	v.SetDefault("notes", "")
	v.SetDefault("notes_pattern", coachfs.DefaultPattern)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("delay", 20*time.Millisecond)
	v.SetDefault("seed", 0)
}

// loadConfig layers defaults, the config file, the environment and flags.
// A missing default config file is fine; a missing --config file is not.
func loadConfig(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, e := range envVars {
		if err := v.BindEnv(e.key, envPrefix+"_"+strings.ToUpper(e.key), e.name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", e.name, err)
		}
	}

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, fmt.Errorf("bind --%s: %w", name, err)
		}
	}

	path, explicit := defaultConfigPath(), false
	if f := flags.Lookup(flagConfig); f != nil && f.Value.String() != "" {
		path, explicit = f.Value.String(), true
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, iofs.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// An untouched flag still reports its zero default.
	if !v.IsSet("temperature") {
		cfg.Temperature = nil
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := newValidator().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

// newValidator returns a validator that also understands listen_addr: a
// host:port pair whose port may be 0 to let the kernel pick one.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("listen_addr", validListenAddr)
	return v
}

func validListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	_, err = strconv.ParseUint(port, 10, 16)
	return err == nil
}

// secret reports whether key holds a credential.
func secret(key string) bool {
	if key == "api_key" {
		return true
	}
	for _, e := range envVars {
		if e.key == key {
			return e.isSecret
		}
	}
	return false
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "coach", "config.yaml")
}

func defaultSessionPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "coach", "session.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "coach", "session.json")
}
