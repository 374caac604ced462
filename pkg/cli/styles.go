package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles renders the labels of the interactive chat.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles creates styles for w. Colors are used only when w is a
// terminal that supports them.
func NewStyles(w io.Writer) *Styles {
	return newStyles(lipgloss.NewRenderer(w))
}

// PlainStyles creates styles that render text unchanged.
func PlainStyles() *Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return newStyles(r)
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		User: r.NewStyle().
			Foreground(lipgloss.Color("86")). // Cyan
			Bold(true),
		Assistant: r.NewStyle().
			Foreground(lipgloss.Color("229")). // Light yellow
			Bold(true),
		Notice: r.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}
