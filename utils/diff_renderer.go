package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/morler/commitgpt/constants/lipgloss"
)

// RenderDiff highlights a unified diff with the given chroma theme.
func RenderDiff(w io.Writer, diff string, theme string) error {
	if !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	if err := quick.Highlight(w, diff, "diff", "terminal256", theme); err != nil {
		return fmt.Errorf("error rendering diff: %w", err)
	}
	return nil
}

// RenderMessage prints the proposed commit message in a box.
func RenderMessage(w io.Writer, title string, message string) {
	fmt.Fprintln(w, lipgloss.Info.Render(title))
	fmt.Fprintln(w, lipgloss.BoxStyle.Render(message))
}
