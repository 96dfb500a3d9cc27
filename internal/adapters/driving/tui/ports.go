// Package tui provides the interactive terminal quiz runner for preppal.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Quiz generates the questions to run.
	Quiz driving.QuizService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(quiz driving.QuizService) *Ports {
	return &Ports{Quiz: quiz}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Quiz == nil {
		return ErrMissingQuizService
	}
	return nil
}
