package json

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/coach"
)

// Save writes a Session to a JSON file, creating parent directories as needed.
// The file is replaced atomically so an interrupted save never truncates it.
func Save(path string, s coach.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Session from a JSON file.
func Load(path string) (coach.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coach.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

// LoadOrNew loads the session at path, or starts a new one with the given
// system prompt and greeting if the file does not exist yet. A loaded
// session keeps its history but takes the current system prompt.
func LoadOrNew(path, systemPrompt, greeting string) (coach.Session, error) {
	s, err := Load(path)
	switch {
	case err == nil:
		s.SystemPrompt = systemPrompt
		return s, nil
	case errors.Is(err, fs.ErrNotExist):
		return coach.NewSession(systemPrompt, greeting), nil
	default:
		return coach.Session{}, err
	}
}
