package fs

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// frontMatter is the optional header of a notes file, either YAML between
// "---" lines or TOML between "+++" lines.
type frontMatter struct {
	Title string `yaml:"title" toml:"title"`
	Order int    `yaml:"order" toml:"order"`
	Skip  bool   `yaml:"skip" toml:"skip"`
}

func parseFrontMatter(text string) (frontMatter, string, error) {
	var fm frontMatter
	delim, meta, body := splitFrontMatter(text)
	switch delim {
	case "---":
		if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
			return fm, "", fmt.Errorf("yaml front matter: %w", err)
		}
	case "+++":
		if _, err := toml.Decode(meta, &fm); err != nil {
			return fm, "", fmt.Errorf("toml front matter: %w", err)
		}
	}
	return fm, body, nil
}

// splitFrontMatter separates a leading delimited block from the body. Text
// without a closed block is all body.
func splitFrontMatter(text string) (delim, meta, body string) {
	for _, d := range []string{"---", "+++"} {
		first, rest, ok := strings.Cut(text, "\n")
		if !ok || strings.TrimRight(first, "\r") != d {
			continue
		}
		for off := 0; off <= len(rest); {
			line, _, found := strings.Cut(rest[off:], "\n")
			if strings.TrimRight(line, "\r") == d {
				end := off + len(line)
				if found {
					end++
				}
				return d, rest[:off], rest[end:]
			}
			if !found {
				break
			}
			off += len(line) + 1
		}
	}
	return "", "", text
}
