package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// planStore implements driven.PlanStore.
type planStore struct {
	store *Store
}

var _ driven.PlanStore = (*planStore)(nil)

// Save stores a plan and its entries, replacing any plan with the same ID.
func (s *planStore) Save(ctx context.Context, plan *domain.StudyPlan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("%w: plan id is empty", domain.ErrInvalidArgument)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Entries go with the old row through the cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM study_plans WHERE id = ?", plan.ID); err != nil {
		return fmt.Errorf("replacing plan: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO study_plans (id, exam_date, total_days, total_hours, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, plan.ID, plan.ExamDate.Format(domain.PlanDateLayout), plan.TotalDays, plan.TotalHours, formatTime(plan.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	for _, e := range plan.Entries {
		topics := e.Topics
		if topics == nil {
			topics = []string{}
		}
		topicsJSON, err := json.Marshal(topics)
		if err != nil {
			return fmt.Errorf("marshalling topics: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO study_plan_entries (plan_id, day, date, subject, hours, topics, completed)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, plan.ID, e.Day, e.DateString(), e.Subject, e.Hours, string(topicsJSON), boolToInt(e.Completed))
		if err != nil {
			return fmt.Errorf("saving day %d: %w", e.Day, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a plan by ID.
func (s *planStore) Get(ctx context.Context, id string) (*domain.StudyPlan, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, exam_date, total_days, total_hours, created_at
		FROM study_plans WHERE id = ?
	`, id)
	return s.load(ctx, row)
}

// Latest returns the most recently saved plan.
func (s *planStore) Latest(ctx context.Context) (*domain.StudyPlan, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, exam_date, total_days, total_hours, created_at
		FROM study_plans ORDER BY seq DESC LIMIT 1
	`)
	return s.load(ctx, row)
}

// SetCompleted flags a day of a plan.
func (s *planStore) SetCompleted(ctx context.Context, id string, day int, completed bool) error {
	var totalDays int
	err := s.store.db.QueryRowContext(ctx, "SELECT total_days FROM study_plans WHERE id = ?", id).Scan(&totalDays)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting plan: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE study_plan_entries SET completed = ? WHERE plan_id = ? AND day = ?
	`, boolToInt(completed), id, day)
	if err != nil {
		return fmt.Errorf("updating day %d: %w", day, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: day %d outside plan of %d days", domain.ErrInvalidArgument, day, totalDays)
	}
	return nil
}

// Delete removes a plan.
func (s *planStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM study_plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *planStore) load(ctx context.Context, row *sql.Row) (*domain.StudyPlan, error) {
	var (
		plan      domain.StudyPlan
		examDate  string
		createdAt string
	)
	err := row.Scan(&plan.ID, &examDate, &plan.TotalDays, &plan.TotalHours, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting plan: %w", err)
	}
	plan.ExamDate, _ = time.Parse(domain.PlanDateLayout, examDate)
	plan.CreatedAt = parseTime(createdAt)

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT day, date, subject, hours, topics, completed
		FROM study_plan_entries WHERE plan_id = ? ORDER BY day
	`, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("listing plan entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e          domain.StudyPlanEntry
			date       string
			topicsJSON string
			completed  int
		)
		if err := rows.Scan(&e.Day, &date, &e.Subject, &e.Hours, &topicsJSON, &completed); err != nil {
			return nil, fmt.Errorf("scanning plan entry: %w", err)
		}
		e.Date, _ = time.Parse(domain.PlanDateLayout, date)
		if err := json.Unmarshal([]byte(topicsJSON), &e.Topics); err != nil {
			return nil, fmt.Errorf("unmarshalling topics: %w", err)
		}
		e.Completed = completed != 0
		plan.Entries = append(plan.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &plan, nil
}
