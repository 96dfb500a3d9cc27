package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewLoading, "loading"},
		{ViewQuestion, "question"},
		{ViewResults, "results"},
		{ViewHelp, "help"},
		{ViewError, "error"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestQuizGenerated(t *testing.T) {
	items := []domain.QuizItem{{Question: "Q?"}}
	msg := QuizGenerated{Items: items, Err: errors.New("boom")}

	assert.Len(t, msg.Items, 1)
	assert.EqualError(t, msg.Err, "boom")
}

func TestQuizFinished(t *testing.T) {
	msg := QuizFinished{Score: domain.QuizScore{Correct: 2, Total: 3}}

	assert.Equal(t, 2, msg.Score.Correct)
	assert.Equal(t, 3, msg.Score.Total)
}
