package mcp

import (
	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides semantic search. Required.
	Retrieval driving.RetrievalService

	// Document manages ingested documents.
	Document driving.DocumentService

	// Chat answers questions from the material.
	Chat driving.ChatService

	// Quiz builds multiple-choice quizzes.
	Quiz driving.QuizService

	// Planner builds and tracks study plans.
	Planner driving.PlannerService

	// TopK is the search size when a call omits top_k. Zero means
	// domain.DefaultTopK.
	TopK int
}

func (p *Ports) defaultTopK() int {
	if p.TopK > 0 {
		return p.TopK
	}
	return domain.DefaultTopK
}

// Validate ensures all required ports are set.
// Tools whose port is nil are not registered.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
