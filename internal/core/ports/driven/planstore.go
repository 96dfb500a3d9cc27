package driven

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// PlanStore persists study plans so progress can be tracked across sessions.
type PlanStore interface {
	// Save stores a plan. The plan must have an ID.
	Save(ctx context.Context, plan *domain.StudyPlan) error

	// Get retrieves a plan by ID.
	// Returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*domain.StudyPlan, error)

	// Latest returns the most recently created plan.
	// Returns domain.ErrNotFound when no plan has been saved.
	Latest(ctx context.Context) (*domain.StudyPlan, error)

	// SetCompleted flags a day of a plan as done or not done.
	SetCompleted(ctx context.Context, id string, day int, completed bool) error

	// Delete removes a plan.
	Delete(ctx context.Context, id string) error
}
