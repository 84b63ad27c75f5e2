package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders step markdown with glamour.
// style is a glamour standard style ("dark", "light", "notty"...) or ""
// to detect the terminal background. Text wraps at width columns when
// width is positive.
func NewRenderer(style string, width int) (func(string) (string, error), error) {
	var opts []glamour.TermRendererOption
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n"), nil
	}, nil
}
