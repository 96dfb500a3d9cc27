package driving

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// PlannerService builds and tracks study schedules.
type PlannerService interface {
	// Build returns a day-by-day plan from tomorrow through the exam date.
	Build(ctx context.Context, req domain.PlanRequest) (*domain.StudyPlan, error)

	// Save stores a plan for later tracking and assigns it an ID.
	Save(ctx context.Context, plan *domain.StudyPlan) error

	// Get returns a saved plan. An empty id returns the latest plan.
	Get(ctx context.Context, id string) (*domain.StudyPlan, error)

	// Complete marks a day of a saved plan as done.
	Complete(ctx context.Context, id string, day int) (*domain.StudyPlan, error)
}
