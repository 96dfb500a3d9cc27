package cli

import (
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

func TestQuizCmd_Text(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("quiz", "--topic", "respiration", "-n", "3", "-d", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, domain.QuizRequest{
		Topic:        "respiration",
		DocumentIDs:  []string{"doc-1"},
		NumQuestions: 3,
	}, ts.quiz.req)
	assert.Contains(t, out, "1. Which organelle produces ATP?")
	assert.Contains(t, out, "   A) Nucleus")
	assert.Contains(t, out, "   B) Mitochondria")
	assert.Contains(t, out, "Answers:")
	assert.Contains(t, out, "  1. B) Mitochondria are the site of respiration.")
}

func TestQuizCmd_DefaultCount(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("quiz")

	require.NoError(t, err)
	assert.Equal(t, quizDefaultQuestions, ts.quiz.req.NumQuestions)
	assert.Empty(t, ts.quiz.req.Topic)
}

func TestQuizCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("quiz", "--format", "json")

	require.NoError(t, err)
	var items []domain.QuizItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].CorrectIndex)
}

func TestQuizCmd_YAML(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("quiz", "-f", "yaml")

	require.NoError(t, err)
	var items []domain.QuizItem
	require.NoError(t, yaml.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Len(t, items[0].Options, 4)
	assert.Contains(t, out, "correct_index: 1")
}

func TestQuizCmd_InvalidFormat(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("quiz", "-f", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
	assert.Zero(t, ts.quiz.req.NumQuestions)
}

func TestQuizCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.quiz.err = domain.ErrGenerationFailed

	_, err := execute("quiz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate quiz")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func stubInteractive(t *testing.T, terminal bool, score *domain.QuizScore, err error) *domain.QuizRequest {
	t.Helper()
	origTerm, origRun := stdinIsTerminal, runQuizTUI
	t.Cleanup(func() {
		stdinIsTerminal = origTerm
		runQuizTUI = origRun
	})

	got := &domain.QuizRequest{}
	stdinIsTerminal = func() bool { return terminal }
	runQuizTUI = func(_ *cobra.Command, req domain.QuizRequest) (*domain.QuizScore, error) {
		*got = req
		return score, err
	}
	return got
}

func TestQuizCmd_InteractivePassed(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	got := stubInteractive(t, true, &domain.QuizScore{Correct: 4, Total: 5, Percent: 80, Passed: true}, nil)

	out, err := execute("quiz", "-i", "-t", "cells")

	require.NoError(t, err)
	assert.Equal(t, "cells", got.Topic)
	assert.Contains(t, out, "Score: 4/5 (80%)")
	assert.Contains(t, out, "Passed.")
}

func TestQuizCmd_InteractiveFailed(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	stubInteractive(t, true, &domain.QuizScore{Correct: 1, Total: 3, Percent: 100.0 / 3, Mistakes: []int{0, 2}}, nil)

	out, err := execute("quiz", "--interactive")

	require.NoError(t, err)
	assert.Contains(t, out, "Score: 1/3 (33%)")
	assert.Contains(t, out, "Below 70%. Revisit questions: 1 3")
}

func TestQuizCmd_InteractiveAbandoned(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	stubInteractive(t, true, nil, nil)

	out, err := execute("quiz", "-i")

	require.NoError(t, err)
	assert.Contains(t, out, "Quiz abandoned.")
}

func TestQuizCmd_InteractiveError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	stubInteractive(t, true, nil, errMock)

	_, err := execute("quiz", "-i")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run quiz")
}

func TestQuizCmd_InteractiveNeedsTerminal(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	stubInteractive(t, false, nil, nil)

	_, err := execute("quiz", "-i")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interactive needs a terminal")
}
