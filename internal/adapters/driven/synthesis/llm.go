package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

var (
	_ driven.QuizSynthesizer  = (*LLMQuizSynthesizer)(nil)
	_ driven.PromptStoreAware = (*LLMQuizSynthesizer)(nil)
)

// quizItemMaxTokens bounds a single JSON item.
const quizItemMaxTokens = 600

// LLMQuizSynthesizer asks an LLM for one quiz item as JSON.
type LLMQuizSynthesizer struct {
	promptLoader
	llm driven.LLMService
}

// NewLLMQuizSynthesizer creates a synthesizer backed by llm.
func NewLLMQuizSynthesizer(llm driven.LLMService) *LLMQuizSynthesizer {
	return &LLMQuizSynthesizer{llm: llm}
}

// Synthesize prompts the model with the cluster and parses its answer.
func (s *LLMQuizSynthesizer) Synthesize(ctx context.Context, req driven.SynthesisRequest) (domain.QuizItem, error) {
	topic := req.Topic
	if topic == "" {
		topic = "the study material"
	}

	prompt := fmt.Sprintf(s.load(driven.PromptQuizItem), topic, domain.FormatContext(req.Cluster))
	if len(req.Avoid) > 0 {
		prompt += "\n\nDo not repeat any of these questions:\n- " + strings.Join(req.Avoid, "\n- ")
	}

	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   quizItemMaxTokens,
		Temperature: 0.4,
		JSON:        true,
	})
	if err != nil {
		return domain.QuizItem{}, fmt.Errorf("generate quiz item: %w", err)
	}

	return parseQuizItem(out)
}

// parseQuizItem decodes a model reply, tolerating Markdown code fences and
// prose around the JSON object.
func parseQuizItem(out string) (domain.QuizItem, error) {
	raw := strings.TrimSpace(out)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return domain.QuizItem{}, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedOutput)
	}

	var item domain.QuizItem
	if err := json.Unmarshal([]byte(raw[start:end+1]), &item); err != nil {
		return domain.QuizItem{}, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	item.Question = strings.TrimSpace(item.Question)
	item.Explanation = strings.TrimSpace(item.Explanation)
	for i, o := range item.Options {
		item.Options[i] = strings.TrimSpace(o)
	}
	return item, nil
}
