// Package quiz provides the question-by-question quiz view.
package quiz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/preppal/internal/core/domain"
)

// View walks the learner through quiz items one at a time. Each answer is
// marked immediately and the explanation shown before moving on.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	options *list.OptionList

	items   []domain.QuizItem
	answers []int
	current int

	width  int
	height int
}

// NewView creates a quiz view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		options: list.NewOptionList(s),
		width:   80,
		height:  24,
	}
}

// SetItems starts a fresh run over items.
func (v *View) SetItems(items []domain.QuizItem) {
	v.items = items
	v.answers = make([]int, len(items))
	for i := range v.answers {
		v.answers[i] = -1
	}
	v.current = 0
	if len(items) > 0 {
		v.options.SetOptions(items[0].Options)
	}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles key presses for the open question.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(v.items) == 0 {
		return v, nil
	}
	keyStr := keyMsg.String()

	if v.options.Revealed() {
		if keymap.Matches(keyStr, v.keymap.Next) {
			return v, v.advance()
		}
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Choose):
		v.options.SetSelected(int(keyStr[0] - '1'))
		return v, v.submit()
	case keymap.Matches(keyStr, v.keymap.Answer):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.options, cmd = v.options.Update(msg)
	return v, cmd
}

// submit records the highlighted option and reveals the answer.
func (v *View) submit() tea.Cmd {
	choice := v.options.Selected()
	v.answers[v.current] = choice
	v.options.Reveal(v.items[v.current].CorrectIndex, choice)

	question := v.current
	return func() tea.Msg {
		return messages.AnswerSubmitted{Question: question, Choice: choice}
	}
}

// advance moves to the next question, or finishes the quiz.
func (v *View) advance() tea.Cmd {
	if v.current == len(v.items)-1 {
		score := domain.ScoreQuiz(v.items, v.answers)
		return func() tea.Msg {
			return messages.QuizFinished{Score: score}
		}
	}
	v.current++
	v.options.SetOptions(v.items[v.current].Options)
	return nil
}

// View renders the current question.
func (v *View) View() string {
	if len(v.items) == 0 {
		return v.styles.Muted.Render("No questions")
	}
	item := v.items[v.current]

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Question %d of %d", v.current+1, len(v.items))))
	b.WriteString("\n\n")

	question := lipgloss.NewStyle().Width(v.contentWidth()).Render(item.Question)
	b.WriteString(v.styles.Card.Render(question))
	b.WriteString("\n\n")
	b.WriteString(v.options.View())

	if v.options.Revealed() {
		b.WriteString("\n\n")
		ok := v.answers[v.current] == item.CorrectIndex
		verdict := "Correct!"
		if !ok {
			verdict = "Incorrect. Answer: " + item.CorrectOption()
		}
		b.WriteString(v.styles.Verdict(ok, verdict))
		b.WriteString("\n")
		explanation := lipgloss.NewStyle().Width(v.contentWidth()).Render(item.Explanation)
		b.WriteString(v.styles.Muted.Render(explanation))
	}

	return b.String()
}

func (v *View) contentWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.options.SetWidth(width)
}

// Current returns the 0-based index of the open question.
func (v *View) Current() int {
	return v.current
}

// Total returns the number of questions.
func (v *View) Total() int {
	return len(v.items)
}

// Revealed reports whether the open question has been answered.
func (v *View) Revealed() bool {
	return v.options.Revealed()
}

// Answers returns the chosen option per question, -1 where unanswered.
func (v *View) Answers() []int {
	out := make([]int, len(v.answers))
	copy(out, v.answers)
	return out
}

// CorrectSoFar counts answered questions that were right.
func (v *View) CorrectSoFar() int {
	n := 0
	for i, a := range v.answers {
		if a >= 0 && a == v.items[i].CorrectIndex {
			n++
		}
	}
	return n
}
