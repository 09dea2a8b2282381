package goldmark

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coach"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// minWidth bounds how narrow nested content may be wrapped.
const minWidth = 10

type styles struct {
	heading lipgloss.Style
	bold    lipgloss.Style
	italic  lipgloss.Style
	strike  lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
	faint   lipgloss.Style
	quote   lipgloss.Style
}

func newStyles(theme coach.Theme) styles {
	return styles{
		heading: lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		bold:    lipgloss.NewStyle().Bold(true),
		italic:  lipgloss.NewStyle().Italic(true),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		code:    lipgloss.NewStyle().Foreground(color(theme.Accent)),
		link:    lipgloss.NewStyle().Underline(true),
		faint:   lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
		quote:   lipgloss.NewStyle().Foreground(color(theme.Coach)),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// renderer turns one parsed reply into terminal lines. Block methods return
// the lines of their node already wrapped; callers add indentation.
type renderer struct {
	parser parser.Parser
	styles styles
	source []byte
}

func newRenderer(theme coach.Theme) *renderer {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))
	return &renderer{parser: md.Parser(), styles: newStyles(theme)}
}

func (r *renderer) render(source []byte, width int) string {
	r.source = source
	doc := r.parser.Parse(text.NewReader(source))
	return strings.Join(r.blocks(doc, width), "\n")
}

// blocks renders the children of parent separated by blank lines.
func (r *renderer) blocks(parent ast.Node, width int) []string {
	var out []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		lines := r.block(n, width)
		if len(lines) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	return out
}

func (r *renderer) block(n ast.Node, width int) []string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(r.inline(n), width)
	case *ast.Heading:
		return wrap(r.styles.heading.Render(r.inline(n)), width)
	case *ast.FencedCodeBlock:
		var out []string
		if lang := string(n.Language(r.source)); lang != "" {
			out = append(out, r.styles.faint.Render(lang))
		}
		return append(out, r.code(n)...)
	case *ast.CodeBlock:
		return r.code(n)
	case *ast.List:
		return r.list(n, width)
	case *ast.Blockquote:
		bar := r.styles.quote.Render("┃") + " "
		inner := r.blocks(n, max(width-2, minWidth))
		for i, line := range inner {
			inner[i] = bar + line
		}
		return inner
	case *ast.ThematicBreak:
		return []string{r.styles.faint.Render(strings.Repeat("─", min(width, 40)))}
	case *ast.HTMLBlock:
		return rawLines(n, r.source)
	default:
		return r.blocks(n, width)
	}
}

// code renders code lines verbatim behind a gutter. Code is never reflowed.
func (r *renderer) code(n ast.Node) []string {
	gutter := r.styles.faint.Render("│") + " "
	lines := rawLines(n, r.source)
	for i, line := range lines {
		lines[i] = gutter + line
	}
	return lines
}

func (r *renderer) list(n *ast.List, width int) []string {
	var out []string
	i := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if n.IsOrdered() {
			marker = strconv.Itoa(n.Start+i) + ". "
		}
		i++
		if i > 1 && !n.IsTight {
			out = append(out, "")
		}
		pad := strings.Repeat(" ", len(marker))
		for j, line := range r.item(item, max(width-len(marker), minWidth)) {
			switch {
			case j == 0:
				out = append(out, marker+line)
			case line == "":
				out = append(out, "")
			default:
				out = append(out, pad+line)
			}
		}
	}
	return out
}

func (r *renderer) item(n *ast.ListItem, width int) []string {
	var out []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, r.block(c, width)...)
	}
	return out
}

// inline renders the inline content of n as one styled string. Styled
// spans collect their children into a fresh builder and are decorated on
// the way out.
func (r *renderer) inline(n ast.Node) string {
	stack := []*strings.Builder{{}}
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if node == n {
			return ast.WalkContinue, nil
		}
		top := stack[len(stack)-1]
		switch v := node.(type) {
		case *ast.Text:
			if entering {
				top.Write(v.Segment.Value(r.source))
				switch {
				case v.HardLineBreak():
					top.WriteByte('\n')
				case v.SoftLineBreak():
					top.WriteByte(' ')
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.String:
			if entering {
				top.Write(v.Value)
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if entering {
				top.WriteString(r.styles.link.Render(string(v.Label(r.source))))
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			if entering {
				for i := 0; i < v.Segments.Len(); i++ {
					seg := v.Segments.At(i)
					top.Write(seg.Value(r.source))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Emphasis, *ast.CodeSpan, *ast.Link, *ast.Image, *east.Strikethrough:
			if entering {
				stack = append(stack, &strings.Builder{})
				return ast.WalkContinue, nil
			}
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].WriteString(r.decorate(node, top.String()))
		}
		return ast.WalkContinue, nil
	})
	return stack[0].String()
}

func (r *renderer) decorate(n ast.Node, inner string) string {
	switch v := n.(type) {
	case *ast.Emphasis:
		if v.Level == 1 {
			return r.styles.italic.Render(inner)
		}
		return r.styles.bold.Render(inner)
	case *ast.CodeSpan:
		return r.styles.code.Render(inner)
	case *ast.Link:
		return r.styles.link.Render(inner) + " " + r.styles.faint.Render("("+string(v.Destination)+")")
	case *ast.Image:
		return r.styles.link.Render(inner) + " " + r.styles.faint.Render("("+string(v.Destination)+")")
	case *east.Strikethrough:
		return r.styles.strike.Render(inner)
	}
	return inner
}

// wrap word-wraps s to width and drops the padding lipgloss adds.
func wrap(s string, width int) []string {
	lines := strings.Split(lipgloss.NewStyle().Width(width).Render(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines
}

func rawLines(n ast.Node, source []byte) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(source)), "\r\n"))
	}
	return out
}
