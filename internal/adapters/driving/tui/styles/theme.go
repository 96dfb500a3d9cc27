// Package styles holds the colours and lipgloss styles shared by the quiz
// TUI and the styled output of the CLI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a colour palette. Every field must be set.
type Theme struct {
	Accent    lipgloss.Color // titles, the selected option
	Highlight lipgloss.Color // subjects, section headers
	Text      lipgloss.Color
	Dim       lipgloss.Color // dates, ids, explanations
	Correct   lipgloss.Color // right answers, finished days
	Caution   lipgloss.Color
	Wrong     lipgloss.Color // wrong answers, failures
	Frame     lipgloss.Color // borders
	Bar       lipgloss.Color // status bar background
}

// DefaultTheme is a dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    "#7C3AED",
		Highlight: "#06B6D4",
		Text:      "#CDD6F4",
		Dim:       "#6C7086",
		Correct:   "#A6E3A1",
		Caution:   "#F9E2AF",
		Wrong:     "#F38BA8",
		Frame:     "#45475A",
		Bar:       "#181825",
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Help     lipgloss.Style

	// Card frames a question.
	Card      lipgloss.Style
	Border    lipgloss.Style
	StatusBar lipgloss.Style
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// NewStyles derives styles from theme, or from DefaultTheme when theme is nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame)

	return &Styles{
		theme:     theme,
		Title:     fg(theme.Accent).Bold(true),
		Subtitle:  fg(theme.Highlight).Bold(true),
		Normal:    fg(theme.Text),
		Muted:     fg(theme.Dim),
		Selected:  fg(theme.Text).Background(theme.Accent).Bold(true),
		Error:     fg(theme.Wrong),
		Success:   fg(theme.Correct),
		Warning:   fg(theme.Caution),
		Help:      fg(theme.Dim),
		Card:      framed.Padding(0, 1),
		Border:    framed,
		StatusBar: fg(theme.Dim).Background(theme.Bar).Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Checkbox renders a plan day marker.
func (s *Styles) Checkbox(done bool) string {
	if done {
		return s.Success.Render("[x]")
	}
	return s.Muted.Render("[ ]")
}

// Verdict renders text as right or wrong.
func (s *Styles) Verdict(ok bool, text string) string {
	if ok {
		return s.Success.Render(text)
	}
	return s.Error.Render(text)
}

// ProgressBar renders fraction (clamped to [0, 1]) as a bar of width cells.
func (s *Styles) ProgressBar(fraction float64, width int) string {
	width = max(width, 1)
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return s.Success.Render(strings.Repeat("█", filled)) +
		s.Muted.Render(strings.Repeat("░", width-filled))
}
