// Package results provides the end-of-quiz score view.
package results

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/preppal/internal/core/domain"
)

// barWidth is the number of cells in the score bar.
const barWidth = 30

// View summarises a finished quiz and lists the questions that were missed.
type View struct {
	styles  *styles.Styles
	items   []domain.QuizItem
	answers []int
	score   domain.QuizScore
}

// NewView creates a results view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s}
}

// SetResult records the finished quiz.
func (v *View) SetResult(items []domain.QuizItem, answers []int, score domain.QuizScore) {
	v.items = items
	v.answers = answers
	v.score = score
}

// Score returns the recorded score.
func (v *View) Score() domain.QuizScore {
	return v.score
}

// View renders the score and a review of mistakes.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Quiz complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s  %d/%d (%.0f%%)\n",
		v.styles.ProgressBar(v.score.Percent/100, barWidth),
		v.score.Correct, v.score.Total, v.score.Percent))

	if v.score.Passed {
		b.WriteString(v.styles.Success.Render("Passed"))
	} else {
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Below %.0f%%, keep revising", domain.QuizPassPercent)))
	}
	b.WriteString("\n")

	if len(v.score.Mistakes) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Review"))
		b.WriteString("\n")
		for _, i := range v.score.Mistakes {
			if i < 0 || i >= len(v.items) {
				continue
			}
			item := v.items[i]
			b.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, item.Question))
			if i < len(v.answers) && v.answers[i] >= 0 && v.answers[i] < len(item.Options) {
				b.WriteString(v.styles.Error.Render("   You: " + item.Options[v.answers[i]]))
				b.WriteString("\n")
			}
			b.WriteString(v.styles.Success.Render("   Answer: " + item.CorrectOption()))
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render("   " + item.Explanation))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[q] quit"))
	return b.String()
}
