package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// Ensure PlanStore implements the interface.
var _ driven.PlanStore = (*PlanStore)(nil)

// PlanStore is an in-memory implementation of driven.PlanStore.
type PlanStore struct {
	mu    sync.RWMutex
	plans map[string]domain.StudyPlan
	order []string
}

// NewPlanStore creates a new in-memory plan store.
func NewPlanStore() *PlanStore {
	return &PlanStore{plans: make(map[string]domain.StudyPlan)}
}

// Save stores a plan, replacing any plan with the same ID.
func (s *PlanStore) Save(_ context.Context, plan *domain.StudyPlan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("%w: plan id is empty", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.plans[plan.ID]; !exists {
		s.order = append(s.order, plan.ID)
	}
	s.plans[plan.ID] = clonePlan(*plan)
	return nil
}

// Get retrieves a plan by ID.
func (s *PlanStore) Get(_ context.Context, id string) (*domain.StudyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	out := clonePlan(plan)
	return &out, nil
}

// Latest returns the most recently saved plan.
func (s *PlanStore) Latest(ctx context.Context) (*domain.StudyPlan, error) {
	s.mu.RLock()
	n := len(s.order)
	var id string
	if n > 0 {
		id = s.order[n-1]
	}
	s.mu.RUnlock()
	if n == 0 {
		return nil, fmt.Errorf("plan: %w", domain.ErrNotFound)
	}
	return s.Get(ctx, id)
}

// SetCompleted flags a day of a plan.
func (s *PlanStore) SetCompleted(_ context.Context, id string, day int, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[id]
	if !ok {
		return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if day < 1 || day > len(plan.Entries) {
		return fmt.Errorf("%w: day %d outside plan of %d days", domain.ErrInvalidArgument, day, len(plan.Entries))
	}
	plan.Entries[day-1].Completed = completed
	return nil
}

// Delete removes a plan.
func (s *PlanStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[id]; !ok {
		return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	delete(s.plans, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return nil
}

func clonePlan(p domain.StudyPlan) domain.StudyPlan {
	p.Entries = slices.Clone(p.Entries)
	for i := range p.Entries {
		p.Entries[i].Topics = slices.Clone(p.Entries[i].Topics)
	}
	return p
}
