package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
	"github.com/custodia-labs/preppal/internal/validate"
)

// Ensure QuizGenerator implements the interface.
var _ driving.QuizService = (*QuizGenerator)(nil)

const (
	// chunksPerQuestion is how many grounding chunks are fetched per question.
	chunksPerQuestion = 4

	// MaxQuizRetries is how many times a malformed item is regenerated.
	MaxQuizRetries = 2
)

// errDuplicateQuestion marks an item whose question was already asked.
var errDuplicateQuestion = errors.New("duplicate question")

// QuizGenerator builds multiple-choice quizzes grounded in indexed chunks.
type QuizGenerator struct {
	store       driven.DocumentStore
	retriever   driving.RetrievalService
	synthesizer driven.QuizSynthesizer
}

// NewQuizGenerator creates a new quiz generator.
func NewQuizGenerator(
	store driven.DocumentStore,
	retriever driving.RetrievalService,
	synthesizer driven.QuizSynthesizer,
) *QuizGenerator {
	return &QuizGenerator{
		store:       store,
		retriever:   retriever,
		synthesizer: synthesizer,
	}
}

// Generate returns req.NumQuestions validated quiz items.
func (g *QuizGenerator) Generate(ctx context.Context, req domain.QuizRequest) ([]domain.QuizItem, error) {
	logger.Section("Quiz")
	logger.Debug("Topic: %q, questions: %d, scope: %d documents", req.Topic, req.NumQuestions, len(req.DocumentIDs))

	n := req.NumQuestions
	if n < domain.MinQuizQuestions || n > domain.MaxQuizQuestions {
		return nil, fmt.Errorf("%w: number of questions must be between %d and %d, got %d",
			domain.ErrInvalidArgument, domain.MinQuizQuestions, domain.MaxQuizQuestions, n)
	}
	if g.synthesizer == nil {
		return nil, fmt.Errorf("%w: no quiz synthesizer configured", domain.ErrGenerationFailed)
	}

	grounding, err := g.ground(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(grounding) == 0 {
		return nil, fmt.Errorf("%w: no study material to build a quiz from", domain.ErrNoContent)
	}
	logger.Debug("Grounding quiz on %d chunks", len(grounding))

	items := make([]domain.QuizItem, 0, n)
	asked := make(map[string]struct{}, n)
	avoid := make([]string, 0, n)
	for i, cluster := range clusters(grounding, n) {
		item, err := g.synthesize(ctx, driven.SynthesisRequest{
			Topic:   req.Topic,
			Cluster: cluster,
			Avoid:   avoid,
		}, asked)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		asked[questionKey(item.Question)] = struct{}{}
		avoid = append(avoid, item.Question)
		items = append(items, item)
	}

	return items, nil
}

func (g *QuizGenerator) ground(ctx context.Context, req domain.QuizRequest) ([]domain.QueryResult, error) {
	want := chunksPerQuestion * req.NumQuestions
	if strings.TrimSpace(req.Topic) != "" {
		results, err := g.retriever.Retrieve(ctx, req.Topic, req.DocumentIDs, want)
		if err != nil {
			return nil, fmt.Errorf("quiz grounding: %w", err)
		}
		return results, nil
	}
	results, err := g.store.Sample(ctx, req.DocumentIDs, want)
	if err != nil {
		return nil, fmt.Errorf("quiz grounding: %w", err)
	}
	return results, nil
}

// synthesize produces one item, retrying malformed output.
func (g *QuizGenerator) synthesize(
	ctx context.Context, req driven.SynthesisRequest, asked map[string]struct{},
) (domain.QuizItem, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxQuizRetries; attempt++ {
		item, err := g.synthesizer.Synthesize(ctx, req)
		if err == nil {
			err = checkItem(item, asked)
		}
		if err == nil {
			return item, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.QuizItem{}, ctxErr
		}
		if !isMalformed(err) {
			logger.Warn("Quiz synthesis failed: %v", err)
			return domain.QuizItem{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
		logger.Debug("Attempt %d produced a malformed item: %v", attempt+1, err)
		lastErr = err
	}
	return domain.QuizItem{}, fmt.Errorf("%w: %d attempts produced malformed items: %w",
		domain.ErrGenerationFailed, MaxQuizRetries+1, lastErr)
}

func checkItem(item domain.QuizItem, asked map[string]struct{}) error {
	if err := validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	if _, dup := asked[questionKey(item.Question)]; dup {
		return fmt.Errorf("%w: %w", domain.ErrMalformedOutput, errDuplicateQuestion)
	}
	return nil
}

func isMalformed(err error) bool {
	return errors.Is(err, domain.ErrMalformedOutput)
}

func questionKey(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// clusters splits ranked results into n groups: group i holds results
// i, i+n, i+2n and so on. With fewer results than groups, groups wrap around
// so every group has at least one chunk.
func clusters(results []domain.QueryResult, n int) [][]domain.QueryResult {
	out := make([][]domain.QueryResult, n)
	for i := range n {
		if i >= len(results) {
			out[i] = []domain.QueryResult{results[i%len(results)]}
			continue
		}
		for j := i; j < len(results); j += n {
			out[i] = append(out[i], results[j])
		}
	}
	return out
}
