package splice

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Heading is a Markdown heading located in a document.
type Heading struct {
	Level int
	Text  string

	// Offset is the byte offset of the start of the heading's first line.
	Offset int

	// Line is the 1-based line of Offset.
	Line int
}

// Matches reports whether h has the level and text prefix of the ATX
// heading line pattern, e.g. "## Positivity Tally by State".
func (h Heading) Matches(pattern string) bool {
	level, title := parseHeadingPattern(pattern)
	return level == h.Level && strings.HasPrefix(h.Text, title)
}

// ParseHeadings returns the document's headings in source order. Lines that
// only look like headings, such as those inside fenced code, are excluded.
func ParseHeadings(source []byte) []Heading {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		lines := heading.Lines()
		if lines.Len() == 0 {
			// Empty ATX headings carry no segments.
			return ast.WalkSkipChildren, nil
		}

		var title bytes.Buffer
		for i := range lines.Len() {
			if i > 0 {
				title.WriteByte(' ')
			}
			seg := lines.At(i)
			title.Write(bytes.TrimSpace(seg.Value(source)))
		}

		offset := lineStart(source, lines.At(0).Start)
		headings = append(headings, Heading{
			Level:  heading.Level,
			Text:   title.String(),
			Offset: offset,
			Line:   bytes.Count(source[:offset], []byte("\n")) + 1,
		})
		return ast.WalkSkipChildren, nil
	})

	return headings
}

// parseHeadingPattern splits "## Title" into its level and title.
// A pattern without leading hashes matches level-2 headings.
func parseHeadingPattern(pattern string) (int, string) {
	pattern = strings.TrimSpace(pattern)
	level := len(pattern) - len(strings.TrimLeft(pattern, "#"))
	title := strings.TrimSpace(pattern[level:])
	if level == 0 {
		level = 2
	}
	return level, title
}

// lineStart returns the offset of the beginning of the line containing pos.
func lineStart(source []byte, pos int) int {
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

// lineEnd returns the offset just past the newline ending the line at pos,
// or len(source) on the last line.
func lineEnd(source []byte, pos int) int {
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(source)
}
