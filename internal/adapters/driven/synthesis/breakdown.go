package synthesis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

var (
	_ driven.TopicBreakdown   = (*LLMTopicBreakdown)(nil)
	_ driven.PromptStoreAware = (*LLMTopicBreakdown)(nil)
)

// LLMTopicBreakdown asks an LLM to split a subject into study topics.
type LLMTopicBreakdown struct {
	promptLoader
	llm driven.LLMService
}

// NewLLMTopicBreakdown creates a topic breakdown backed by llm.
func NewLLMTopicBreakdown(llm driven.LLMService) *LLMTopicBreakdown {
	return &LLMTopicBreakdown{llm: llm}
}

// Topics returns at most n non-empty topic lines from the model reply.
func (b *LLMTopicBreakdown) Topics(ctx context.Context, subject string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(b.load(driven.PromptTopicBreakdown), n, subject)
	out, err := b.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   40 * n,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("topic breakdown for %q: %w", subject, err)
	}

	return parseTopics(out, n), nil
}

// listMarker matches bullets and "1." or "1)" numbering at the start of a line.
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// parseTopics keeps one topic per line, dropping list markers and blanks.
func parseTopics(out string, n int) []string {
	var topics []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		topics = append(topics, line)
		if len(topics) == n {
			break
		}
	}
	return topics
}
