package driving

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// QuizService builds multiple-choice quizzes grounded in indexed material.
type QuizService interface {
	// Generate returns exactly req.NumQuestions validated items.
	Generate(ctx context.Context, req domain.QuizRequest) ([]domain.QuizItem, error)
}
