// Package splice replaces the positivity tally section of the monitoring
// README with a freshly generated Markdown table.
//
// The section runs from the start heading up to, but not including, the
// end heading. Everything outside it is copied through byte for byte.
package splice

import (
	"bytes"
	"errors"
	"fmt"
)

// Default section headings.
const (
	DefaultStartHeading = "## Positivity Tally by State"
	DefaultEndHeading   = "## Sampling Dairy Products for HPAI RNA"
)

// ErrSectionUnterminated is returned when the start heading has no end
// heading after it.
var ErrSectionUnterminated = errors.New("tally section has no end heading")

// Options selects the section to replace.
type Options struct {
	StartHeading string
	EndHeading   string
}

func (o Options) withDefaults() Options {
	if o.StartHeading == "" {
		o.StartHeading = DefaultStartHeading
	}
	if o.EndHeading == "" {
		o.EndHeading = DefaultEndHeading
	}
	return o
}

// Result is the outcome of a splice.
type Result struct {
	Content []byte

	// Replaced is false when the README has no start heading; Content is
	// then the unchanged README.
	Replaced bool

	// StartLine and EndLine are the 1-based lines of the two headings.
	StartLine int
	EndLine   int
}

// Section locates the start and end headings in readme.
// found is false when there is no start heading.
func Section(readme []byte, opts Options) (start, end Heading, found bool, err error) {
	opts = opts.withDefaults()

	headings := ParseHeadings(readme)
	for i, h := range headings {
		if !h.Matches(opts.StartHeading) {
			continue
		}
		for _, next := range headings[i+1:] {
			if next.Matches(opts.EndHeading) {
				return h, next, true, nil
			}
		}
		return h, Heading{}, true, fmt.Errorf("%w: %q after line %d", ErrSectionUnterminated, opts.EndHeading, h.Line)
	}

	return Heading{}, Heading{}, false, nil
}

// Splice replaces the body of the tally section in readme with table.
// The start heading line is kept and followed by a blank line, the table,
// and a blank line before the end heading.
func Splice(readme, table []byte, opts Options) (*Result, error) {
	start, end, found, err := Section(readme, opts)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Content: readme}, nil
	}

	headingEnd := lineEnd(readme, start.Offset)
	headingLine := bytes.TrimRight(readme[start.Offset:headingEnd], "\r\n")

	var out bytes.Buffer
	out.Grow(len(readme) + len(table))
	out.Write(readme[:start.Offset])
	out.Write(headingLine)
	out.WriteString("\n\n")
	body := bytes.TrimRight(table, "\n")
	if len(body) > 0 {
		out.Write(body)
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.Write(readme[end.Offset:])

	return &Result{
		Content:   out.Bytes(),
		Replaced:  true,
		StartLine: start.Line,
		EndLine:   end.Line,
	}, nil
}
