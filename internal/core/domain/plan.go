package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Study plan bounds.
const (
	MinHoursPerDay = 1.0
	MaxHoursPerDay = 12.0

	// MaxPlanDays caps how far away an exam may be.
	MaxPlanDays = 3660
)

// PlanDateLayout is the calendar date format used for exam and entry dates.
const PlanDateLayout = "2006-01-02"

// PlanRequest describes the exam a plan is built for.
type PlanRequest struct {
	ExamDate    time.Time `validate:"required"`
	HoursPerDay float64   `validate:"gte=1,lte=12"`
	Subjects    []string  `validate:"min=1,dive,notblank"`
}

// StudyPlanEntry is one day of a study plan.
type StudyPlanEntry struct {
	// Day is 1-based and sequential.
	Day       int
	Date      time.Time
	Subject   string
	Hours     float64
	Topics    []string
	Completed bool
}

// DateString returns the entry date in PlanDateLayout.
func (e StudyPlanEntry) DateString() string {
	return e.Date.Format(PlanDateLayout)
}

// entryView is the serialised shape of a StudyPlanEntry.
type entryView struct {
	Day       int      `json:"day" yaml:"day"`
	Date      string   `json:"date" yaml:"date"`
	Subject   string   `json:"subject" yaml:"subject"`
	Hours     float64  `json:"hours" yaml:"hours"`
	Topics    []string `json:"topics" yaml:"topics"`
	Completed bool     `json:"completed" yaml:"completed"`
}

func (e StudyPlanEntry) view() entryView {
	return entryView{
		Day:       e.Day,
		Date:      e.DateString(),
		Subject:   e.Subject,
		Hours:     e.Hours,
		Topics:    e.Topics,
		Completed: e.Completed,
	}
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (e StudyPlanEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.view())
}

// MarshalYAML renders the date as YYYY-MM-DD.
func (e StudyPlanEntry) MarshalYAML() (any, error) {
	return e.view(), nil
}

// StudyPlan is a full day-by-day schedule through the exam date.
type StudyPlan struct {
	// ID is set once a plan is saved.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	ExamDate   time.Time        `json:"-" yaml:"-"`
	Entries    []StudyPlanEntry `json:"plan" yaml:"plan"`
	TotalDays  int              `json:"total_days" yaml:"total_days"`
	TotalHours float64          `json:"total_hours" yaml:"total_hours"`
	CreatedAt  time.Time        `json:"-" yaml:"-"`
}

// CompletedDays counts entries marked completed.
func (p StudyPlan) CompletedDays() int {
	n := 0
	for _, e := range p.Entries {
		if e.Completed {
			n++
		}
	}
	return n
}

// Progress returns the completed fraction of the plan in [0, 1].
func (p StudyPlan) Progress() float64 {
	if p.TotalDays == 0 {
		return 0
	}
	return float64(p.CompletedDays()) / float64(p.TotalDays)
}

// MarkCompleted flags the given 1-based day as done.
func (p *StudyPlan) MarkCompleted(day int) error {
	if day < 1 || day > len(p.Entries) {
		return fmt.Errorf("%w: day %d outside plan of %d days", ErrInvalidArgument, day, len(p.Entries))
	}
	p.Entries[day-1].Completed = true
	return nil
}

// PlaceholderTopic is the synthetic topic used when no breakdown is available.
func PlaceholderTopic(subject string, k int) string {
	return fmt.Sprintf("%s - Topic %d", subject, k)
}
