package domain

// Quiz bounds.
const (
	MinQuizQuestions = 1
	MaxQuizQuestions = 10

	// QuizOptionCount is the number of options every item carries.
	QuizOptionCount = 4

	// QuizPassPercent is the score at which a quiz counts as passed.
	QuizPassPercent = 70.0
)

// QuizItem is a single multiple-choice question grounded in study material.
type QuizItem struct {
	Question     string   `json:"question" yaml:"question" validate:"required,notblank"`
	Options      []string `json:"options" yaml:"options" validate:"len=4,dive,required,notblank"`
	CorrectIndex int      `json:"correct_index" yaml:"correct_index" validate:"min=0,max=3"`
	Explanation  string   `json:"explanation" yaml:"explanation" validate:"required,notblank"`
}

// CorrectOption returns the text of the correct option.
func (q QuizItem) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// QuizRequest asks for a quiz, optionally focused on a topic or scoped to documents.
type QuizRequest struct {
	// Topic is used as the retrieval query when set.
	// Without a topic, chunks are sampled across documents for coverage.
	Topic string

	// DocumentIDs restricts grounding to these documents (empty means all).
	DocumentIDs []string

	// NumQuestions must be between MinQuizQuestions and MaxQuizQuestions.
	NumQuestions int
}

// QuizScore summarises a taken quiz.
type QuizScore struct {
	Correct int     `json:"correct" yaml:"correct"`
	Total   int     `json:"total" yaml:"total"`
	Percent float64 `json:"percent" yaml:"percent"`
	Passed  bool    `json:"passed" yaml:"passed"`

	// Mistakes holds the indexes of items answered wrongly.
	Mistakes []int `json:"mistakes,omitempty" yaml:"mistakes,omitempty"`
}

// ScoreQuiz marks answers against items. answers[i] is the chosen option
// index for items[i]; missing or out-of-range answers count as wrong.
func ScoreQuiz(items []QuizItem, answers []int) QuizScore {
	score := QuizScore{Total: len(items)}
	for i, item := range items {
		if i < len(answers) && answers[i] == item.CorrectIndex {
			score.Correct++
			continue
		}
		score.Mistakes = append(score.Mistakes, i)
	}
	if score.Total > 0 {
		score.Percent = float64(score.Correct) / float64(score.Total) * 100
	}
	score.Passed = score.Total > 0 && score.Percent >= QuizPassPercent
	return score
}
