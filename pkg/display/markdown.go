package display

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown converts markdown to terminal output with glamour,
// falling back to the raw text when rendering is unavailable (e.g. output
// is not a terminal).
func RenderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
