package tui

import "errors"

// ErrMissingQuizService is returned when the quiz service is not provided.
var ErrMissingQuizService = errors.New("tui: quiz service is required")

// ErrNoQuestions is returned when a quiz produced no items.
var ErrNoQuestions = errors.New("tui: quiz has no questions")
