package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/fwojciec/coach"
	"github.com/fwojciec/coach/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"profile.md":        file("---\ntitle: Profile\norder: -1\n---\nAge 34, runs 3x a week.\n"),
		"goals.md":          file("+++\ntitle = \"Goals\"\norder = 1\n+++\nSub-25 5k by June.\n"),
		"log/2026-10-01.md": file("Squats 5x5 @ 80kg\n"),
		"log/2026-10-03.md": file("Easy 6k run\n"),
		"log/draft.md":      file("---\nskip: true\n---\nnot ready\n"),
		"log/notes.txt":     file("ignored"),
	}

	notes, err := fs.Load(fsys, "**/*.md")
	require.NoError(t, err)

	var paths, titles []string
	for _, n := range notes {
		paths = append(paths, n.Path)
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"profile.md", "log/2026-10-01.md", "log/2026-10-03.md", "goals.md"}, paths)
	assert.Equal(t, []string{"Profile", "2026-10-01", "2026-10-03", "Goals"}, titles)
	assert.Equal(t, "Age 34, runs 3x a week.\n", notes[0].Body)
}

func TestLoad_PatternScopesFiles(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"profile.md":        file("me"),
		"log/2026-10-01.md": file("squats"),
		"log/deep/old.md":   file("old"),
	}

	notes, err := fs.Load(fsys, "log/**/*.md")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "log/2026-10-01.md", notes[0].Path)
	assert.Equal(t, "log/deep/old.md", notes[1].Path)
}

func TestLoad_DefaultPattern(t *testing.T) {
	t.Parallel()
	notes, err := fs.Load(fstest.MapFS{"a/b/c.md": file("x")}, "")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestLoad_InvalidPattern(t *testing.T) {
	t.Parallel()
	_, err := fs.Load(fstest.MapFS{}, "[")
	assert.ErrorIs(t, err, coach.ErrValidation)
}

func TestLoad_FrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantBody  string
		wantErr   bool
	}{
		{"none", "just text\n", "note", "just text\n", false},
		{"crlf yaml", "---\r\ntitle: Week 1\r\n---\r\nbody\r\n", "Week 1", "body\r\n", false},
		{"unclosed is body", "---\ntitle: x\nno close\n", "note", "---\ntitle: x\nno close\n", false},
		{"closing at end of file", "+++\ntitle = \"T\"\n+++", "T", "", false},
		{"byte order mark", "\ufeff---\ntitle: BOM\n---\nb", "BOM", "b", false},
		{"bad yaml", "---\ntitle: [\n---\n", "", "", true},
		{"bad toml", "+++\ntitle = \n+++\n", "", "", true},
		{"horizontal rule later", "intro\n---\nmore\n", "note", "intro\n---\nmore\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			notes, err := fs.Load(fstest.MapFS{"note.md": file(tt.text)}, "*.md")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, tt.wantTitle, notes[0].Title)
			assert.Equal(t, tt.wantBody, notes[0].Body)
		})
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	t.Run("reads from disk", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "log"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "log", "mon.md"), []byte("Bench 3x8"), 0o644))

		notes, err := fs.LoadDir(dir, fs.DefaultPattern)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "log/mon.md", notes[0].Path)
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		_, err := fs.LoadDir(filepath.Join(t.TempDir(), "nope"), "")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "f.md")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		_, err := fs.LoadDir(p, "")
		assert.ErrorIs(t, err, coach.ErrValidation)
	})
}

func TestPrompt(t *testing.T) {
	t.Parallel()
	got := fs.Prompt("You are a coach.\n", []fs.Note{
		{Title: "Profile", Body: "Age 34.\n"},
		{Title: "Empty", Body: "  \n"},
		{Title: "Goals", Body: "Run a 5k."},
	})
	assert.Equal(t, "You are a coach.\n\n## Profile\n\nAge 34.\n\n## Goals\n\nRun a 5k.", got)

	assert.Equal(t, "base", fs.Prompt("base", nil))
	assert.Equal(t, "## A\n\nx", fs.Prompt("", []fs.Note{{Title: "A", Body: "x"}}))
}
