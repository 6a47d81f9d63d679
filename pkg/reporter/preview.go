package reporter

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// previewWrap is the word-wrap width for terminal previews.
const previewWrap = 100

// Preview renders Markdown for the terminal. Color mode "never" selects
// glamour's unstyled renderer.
func Preview(markdown, color string) (string, error) {
	style := glamour.WithAutoStyle()
	switch color {
	case "never":
		style = glamour.WithStandardStyle("notty")
	case "always":
		style = glamour.WithStandardStyle("dark")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(previewWrap))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
