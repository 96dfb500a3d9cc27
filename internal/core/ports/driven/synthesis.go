package driven

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// QuizSynthesizer writes a single multiple-choice item grounded in a cluster
// of retrieved chunks.
//
// Implementations return an error wrapping domain.ErrMalformedOutput when the
// underlying model answered with something that could not be parsed, or when
// nothing new can be asked from the cluster; callers may retry those. Any
// other error is final.
type QuizSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (domain.QuizItem, error)
}

// SynthesisRequest is the grounding for one quiz item.
type SynthesisRequest struct {
	// Topic is the quiz topic, or empty for a general quiz.
	Topic string

	// Cluster holds the chunks the item must be grounded in, best first.
	Cluster []domain.QueryResult

	// Avoid lists question texts already used in the same quiz.
	Avoid []string
}

// TopicBreakdown proposes study subtopics for a subject.
type TopicBreakdown interface {
	// Topics returns up to n subtopics of the subject in study order.
	Topics(ctx context.Context, subject string, n int) ([]string, error)
}
