// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
)

// State represents the current quiz state for display.
type State string

const (
	StateLoading  State = "loading"
	StateQuestion State = "question"
	StateFeedback State = "feedback"
	StateFinished State = "finished"
	StateError    State = "error"
)

// Bar displays quiz progress and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	current int // 1-based question number
	total   int
	correct int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateLoading,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the left side of the status bar.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		return s.styles.Muted.Render("Generating quiz...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateFinished:
		return s.styles.Normal.Render(fmt.Sprintf("Finished  %d/%d correct", s.correct, s.total))
	case StateQuestion, StateFeedback:
		return s.styles.Normal.Render(
			fmt.Sprintf("Question %d/%d  Score %d", s.current, s.total, s.correct))
	}
	return ""
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateQuestion:
		bindings = s.keymap.QuestionHelp()
	case StateFeedback:
		bindings = s.keymap.FeedbackHelp()
	case StateLoading, StateFinished, StateError:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetProgress records the current question number, the total and the
// number answered correctly so far.
func (s *Bar) SetProgress(current, total, correct int) {
	s.current = current
	s.total = total
	s.correct = correct
}

// Progress returns the values set by SetProgress.
func (s *Bar) Progress() (current, total, correct int) {
	return s.current, s.total, s.correct
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
