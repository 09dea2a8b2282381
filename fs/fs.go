// Package fs loads coaching notes (profile, goals, workout logs) from a
// directory tree and folds them into the coach's system prompt.
package fs

import (
	"cmp"
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/coach"
)

// DefaultPattern matches markdown notes at any depth.
const DefaultPattern = "**/*.md"

// Note is one notes file.
type Note struct {
	Path  string // slash-separated, relative to the notes root
	Title string
	Order int
	Body  string
}

// LoadDir loads the notes under dir that match pattern.
func LoadDir(dir, pattern string) ([]Note, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("notes: %s is not a directory: %w", dir, coach.ErrValidation)
	}
	return Load(os.DirFS(dir), pattern)
}

// Load reads every file in fsys matching pattern (which may use **). Notes
// are ordered by their front matter order, then by path. Notes whose front
// matter sets skip are left out.
func Load(fsys iofs.FS, pattern string) ([]Note, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("notes: invalid glob pattern %q: %w", pattern, coach.ErrValidation)
	}

	var notes []Note
	err := doublestar.GlobWalk(fsys, pattern, func(p string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		data, err := iofs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		note, skip, err := parseNote(p, string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if !skip {
			notes = append(notes, note)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}

	slices.SortFunc(notes, func(a, b Note) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.Path, b.Path))
	})
	return notes, nil
}

// Prompt appends notes to base as titled sections. Empty notes are omitted.
func Prompt(base string, notes []Note) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	for _, n := range notes {
		body := strings.TrimSpace(n.Body)
		if body == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(n.Title)
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	return b.String()
}

func parseNote(p, text string) (Note, bool, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	fm, body, err := parseFrontMatter(text)
	if err != nil {
		return Note{}, false, err
	}
	title := fm.Title
	if title == "" {
		base := path.Base(p)
		title = strings.TrimSuffix(base, path.Ext(base))
	}
	return Note{Path: p, Title: title, Order: fm.Order, Body: body}, fm.Skip, nil
}
