package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
	"github.com/custodia-labs/preppal/internal/validate"
)

// Ensure StudyPlanner implements the interface.
var _ driving.PlannerService = (*StudyPlanner)(nil)

// StudyPlanner lays out day-by-day study schedules up to an exam.
type StudyPlanner struct {
	store     driven.PlanStore
	breakdown driven.TopicBreakdown
	now       func() time.Time
}

// PlannerOption configures a StudyPlanner.
type PlannerOption func(*StudyPlanner)

// WithTopicBreakdown replaces placeholder topics with generated subtopics.
func WithTopicBreakdown(b driven.TopicBreakdown) PlannerOption {
	return func(p *StudyPlanner) { p.breakdown = b }
}

// WithPlannerClock sets the source of "today".
func WithPlannerClock(now func() time.Time) PlannerOption {
	return func(p *StudyPlanner) { p.now = now }
}

// NewStudyPlanner creates a new planner. store may be nil when plans are
// never persisted.
func NewStudyPlanner(store driven.PlanStore, opts ...PlannerOption) *StudyPlanner {
	p := &StudyPlanner{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build creates a plan with one entry per day from tomorrow through the exam
// date, rotating through the subjects in order.
func (p *StudyPlanner) Build(ctx context.Context, req domain.PlanRequest) (*domain.StudyPlan, error) {
	logger.Section("Plan")

	subjects := make([]string, len(req.Subjects))
	for i, s := range req.Subjects {
		subjects[i] = strings.TrimSpace(s)
	}
	req.Subjects = subjects
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	today := civilDay(p.now())
	exam := civilDay(req.ExamDate)
	totalDays := daysBetween(today, exam)
	if totalDays < 1 {
		return nil, fmt.Errorf("%w: exam date %s must be after today (%s)",
			domain.ErrInvalidArgument, exam.Format(domain.PlanDateLayout), today.Format(domain.PlanDateLayout))
	}
	if totalDays > domain.MaxPlanDays {
		return nil, fmt.Errorf("%w: exam date %s is %d days away, plans cover at most %d",
			domain.ErrInvalidArgument, exam.Format(domain.PlanDateLayout), totalDays, domain.MaxPlanDays)
	}
	logger.Debug("Planning %d days for %d subjects at %.1f hours/day", totalDays, len(subjects), req.HoursPerDay)

	plan := &domain.StudyPlan{
		ExamDate:   exam,
		Entries:    make([]domain.StudyPlanEntry, totalDays),
		TotalDays:  totalDays,
		TotalHours: float64(totalDays) * req.HoursPerDay,
		CreatedAt:  p.now(),
	}

	// days[subject] counts the entries assigned so far, giving each entry
	// its per-subject topic number.
	days := make(map[string]int, len(subjects))
	for d := 1; d <= totalDays; d++ {
		subject := subjects[(d-1)%len(subjects)]
		days[subject]++
		plan.Entries[d-1] = domain.StudyPlanEntry{
			Day:     d,
			Date:    today.AddDate(0, 0, d),
			Subject: subject,
			Hours:   req.HoursPerDay,
			Topics:  []string{domain.PlaceholderTopic(subject, days[subject])},
		}
	}

	if p.breakdown != nil {
		if err := p.fillTopics(ctx, plan, days); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// fillTopics asks the breakdown collaborator for one subtopic per study day
// of each subject. Placeholders stay where it returns too few.
func (p *StudyPlanner) fillTopics(ctx context.Context, plan *domain.StudyPlan, days map[string]int) error {
	topics := make(map[string][]string, len(days))
	for subject, n := range days {
		list, err := p.breakdown.Topics(ctx, subject, n)
		if err != nil {
			logger.Warn("Topic breakdown for %s failed: %v", subject, err)
			return fmt.Errorf("%w: topics for %s: %w", domain.ErrGenerationFailed, subject, err)
		}
		topics[subject] = list
	}

	seen := make(map[string]int, len(days))
	for i := range plan.Entries {
		e := &plan.Entries[i]
		k := seen[e.Subject]
		seen[e.Subject]++
		if list := topics[e.Subject]; k < len(list) && strings.TrimSpace(list[k]) != "" {
			e.Topics = []string{strings.TrimSpace(list[k])}
		}
	}
	return nil
}

// Save persists a plan, assigning an ID when it has none.
func (p *StudyPlanner) Save(ctx context.Context, plan *domain.StudyPlan) error {
	if p.store == nil {
		return fmt.Errorf("%w: no plan store configured", domain.ErrInvalidConfig)
	}
	if plan == nil {
		return fmt.Errorf("%w: no plan", domain.ErrInvalidArgument)
	}
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if err := p.store.Save(ctx, plan); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	logger.Info("Saved study plan %s", plan.ID)
	return nil
}

// Get returns a saved plan. An empty id returns the most recent plan.
func (p *StudyPlanner) Get(ctx context.Context, id string) (*domain.StudyPlan, error) {
	if p.store == nil {
		return nil, fmt.Errorf("%w: no plan store configured", domain.ErrInvalidConfig)
	}
	if id == "" {
		return p.store.Latest(ctx)
	}
	return p.store.Get(ctx, id)
}

// Complete marks a day of a saved plan as done and returns the updated plan.
func (p *StudyPlanner) Complete(ctx context.Context, id string, day int) (*domain.StudyPlan, error) {
	plan, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := plan.MarkCompleted(day); err != nil {
		return nil, err
	}
	if err := p.store.SetCompleted(ctx, plan.ID, day, true); err != nil {
		return nil, fmt.Errorf("complete day %d: %w", day, err)
	}
	return plan, nil
}

// civilDay drops the time of day, keeping the calendar date in t's location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days between two civil days. Unix seconds are used
// because time.Duration saturates after about 292 years.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / 86400)
}
