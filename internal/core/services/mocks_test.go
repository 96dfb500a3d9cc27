package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
)

// keywordEmbedder maps text onto one axis per keyword, so similarity follows
// which keywords a text mentions.
type keywordEmbedder struct {
	keywords []string
	failOn   string
	calls    atomic.Int32
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	v := make([]float32, len(e.keywords)+1)
	lower := strings.ToLower(text)
	for i, k := range e.keywords {
		v[i] = float32(strings.Count(lower, strings.ToLower(k)))
	}
	v[len(e.keywords)] = 0.01
	return v
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("provider exploded")
	}
	return e.vector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int          { return len(e.keywords) + 1 }
func (e *keywordEmbedder) ModelName() string        { return "keyword" }
func (e *keywordEmbedder) Ping(context.Context) error { return nil }
func (e *keywordEmbedder) Close() error             { return nil }

// mockLLM returns canned responses and records prompts.
type mockLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	r := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return r, nil
}

func (m *mockLLM) Chat(ctx context.Context, msgs []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.Generate(ctx, msgs[len(msgs)-1].Content, driven.GenerateOptions{})
}

func (m *mockLLM) ModelName() string          { return "mock" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// scriptedSynthesizer replays items and errors in order.
type scriptedSynthesizer struct {
	mu       sync.Mutex
	steps    []synthStep
	requests []driven.SynthesisRequest
}

type synthStep struct {
	item domain.QuizItem
	err  error
}

func (s *scriptedSynthesizer) Synthesize(_ context.Context, req driven.SynthesisRequest) (domain.QuizItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.steps) == 0 {
		return domain.QuizItem{}, errors.New("script exhausted")
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.item, step.err
}

// recordingRetriever remembers the arguments of each Retrieve call.
type recordingRetriever struct {
	driving.RetrievalService
	docIDs [][]string
	topKs  []int
}

func (r *recordingRetriever) Retrieve(ctx context.Context, query string, docIDs []string, topK int) ([]domain.QueryResult, error) {
	r.docIDs = append(r.docIDs, docIDs)
	r.topKs = append(r.topKs, topK)
	return r.RetrievalService.Retrieve(ctx, query, docIDs, topK)
}

// samplingStore remembers the arguments of each Sample call.
type samplingStore struct {
	driven.DocumentStore
	docIDs [][]string
	sizes  []int
}

func (s *samplingStore) Sample(ctx context.Context, docIDs []string, n int) ([]domain.QueryResult, error) {
	s.docIDs = append(s.docIDs, docIDs)
	s.sizes = append(s.sizes, n)
	return s.DocumentStore.Sample(ctx, docIDs, n)
}

func quizItem(question string) domain.QuizItem {
	return domain.QuizItem{
		Question:     question,
		Options:      []string{"one", "two", "three", "four"},
		CorrectIndex: 1,
		Explanation:  "because the notes say so",
	}
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// failingHistory rejects every append.
type failingHistory struct{}

func (failingHistory) Append(context.Context, domain.ChatExchange) error {
	return errors.New("disk full")
}

func (failingHistory) List(context.Context, int) ([]domain.ChatExchange, error) { return nil, nil }
func (failingHistory) Clear(context.Context) error                            { return nil }

// mockBreakdown returns topics per subject or fails.
type mockBreakdown struct {
	topics map[string][]string
	err    error
	asked  map[string]int
}

func (m *mockBreakdown) Topics(_ context.Context, subject string, n int) ([]string, error) {
	if m.asked == nil {
		m.asked = make(map[string]int)
	}
	m.asked[subject] = n
	if m.err != nil {
		return nil, m.err
	}
	return m.topics[subject], nil
}
