// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
)

// OptionList displays the options of a question in a navigable list.
// Once revealed, the correct option and the chosen one are marked.
type OptionList struct {
	options  []string
	selected int
	styles   *styles.Styles
	width    int

	revealed bool
	correct  int
	chosen   int
}

// NewOptionList creates a new option list component.
func NewOptionList(s *styles.Styles) *OptionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &OptionList{
		styles:  s,
		width:   80,
		correct: -1,
		chosen:  -1,
	}
}

// Init initialises the option list.
func (o *OptionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages. Navigation is ignored once
// the answer has been revealed.
func (o *OptionList) Update(msg tea.Msg) (*OptionList, tea.Cmd) {
	if o.revealed {
		return o, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			o.MoveUp()
		case "down", "j":
			o.MoveDown()
		}
	}
	return o, nil
}

// View renders the option list.
func (o *OptionList) View() string {
	if len(o.options) == 0 {
		return o.styles.Muted.Render("No options")
	}

	lines := make([]string, 0, len(o.options))
	for i, option := range o.options {
		lines = append(lines, o.renderOption(i, option))
	}
	return strings.Join(lines, "\n")
}

// renderOption formats a single option with its number and marker.
func (o *OptionList) renderOption(index int, option string) string {
	indicator := "  "
	if index == o.selected && !o.revealed {
		indicator = "> "
	}

	maxLen := o.width - 8
	if maxLen < 10 {
		maxLen = 10
	}
	runes := []rune(option)
	if len(runes) > maxLen {
		option = string(runes[:maxLen-3]) + "..."
	}

	line := fmt.Sprintf("%s%d. %s", indicator, index+1, option)

	switch {
	case o.revealed && index == o.correct:
		return o.styles.Success.Render(line + "  ✓")
	case o.revealed && index == o.chosen:
		return o.styles.Error.Render(line + "  ✗")
	case o.revealed:
		return o.styles.Muted.Render(line)
	case index == o.selected:
		return o.styles.Selected.Render(line)
	default:
		return o.styles.Normal.Render(line)
	}
}

// SetOptions replaces the options and resets selection and reveal state.
func (o *OptionList) SetOptions(options []string) {
	o.options = options
	o.selected = 0
	o.revealed = false
	o.correct = -1
	o.chosen = -1
}

// Options returns the current options.
func (o *OptionList) Options() []string {
	return o.options
}

// Selected returns the index of the highlighted option.
func (o *OptionList) Selected() int {
	return o.selected
}

// SetSelected sets the highlighted index when it is in range.
func (o *OptionList) SetSelected(index int) {
	if index >= 0 && index < len(o.options) {
		o.selected = index
	}
}

// MoveUp moves selection up.
func (o *OptionList) MoveUp() {
	if o.selected > 0 {
		o.selected--
	}
}

// MoveDown moves selection down.
func (o *OptionList) MoveDown() {
	if o.selected < len(o.options)-1 {
		o.selected++
	}
}

// Reveal marks the correct option and the one that was chosen.
func (o *OptionList) Reveal(correct, chosen int) {
	o.revealed = true
	o.correct = correct
	o.chosen = chosen
}

// Revealed reports whether the answer has been shown.
func (o *OptionList) Revealed() bool {
	return o.revealed
}

// SetWidth sets the component width.
func (o *OptionList) SetWidth(width int) {
	o.width = width
}

// Width returns the current width.
func (o *OptionList) Width() int {
	return o.width
}

// Count returns the number of options.
func (o *OptionList) Count() int {
	return len(o.options)
}
