// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/preppal/internal/core/domain"
)

// QuizGenerated carries generated quiz items back to the model.
type QuizGenerated struct {
	Items []domain.QuizItem
	Err   error
}

// AnswerSubmitted is sent when the learner locks in an option.
type AnswerSubmitted struct {
	// Question is the 0-based index of the answered item.
	Question int
	// Choice is the 0-based option index chosen.
	Choice int
}

// QuizFinished is sent once every item has been answered.
type QuizFinished struct {
	Score domain.QuizScore
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLoading waits for the quiz to be generated.
	ViewLoading ViewType = iota
	// ViewQuestion shows the current question and its options.
	ViewQuestion
	// ViewResults shows the final score and a review of mistakes.
	ViewResults
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewError shows a generation failure.
	ViewError
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewQuestion:
		return "question"
	case ViewResults:
		return "results"
	case ViewHelp:
		return "help"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an error happens.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}
