// Package plan renders study plans for terminal output.
package plan

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/preppal/internal/core/domain"
)

const progressWidth = 24

// Render formats plan as a styled day-by-day schedule.
func Render(s *styles.Styles, plan *domain.StudyPlan) string {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if plan == nil || len(plan.Entries) == 0 {
		return s.Muted.Render("No study plan")
	}

	var b strings.Builder

	title := fmt.Sprintf("Study plan: %d days, %.1f hours", plan.TotalDays, plan.TotalHours)
	if !plan.ExamDate.IsZero() {
		title += ", exam " + plan.ExamDate.Format(domain.PlanDateLayout)
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")
	if plan.ID != "" {
		b.WriteString(s.Muted.Render("ID: " + plan.ID))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("%s  %d/%d days done\n\n",
		s.ProgressBar(plan.Progress(), progressWidth), plan.CompletedDays(), plan.TotalDays))

	for _, e := range plan.Entries {
		b.WriteString(renderEntry(s, e))
		b.WriteString("\n")
	}
	return b.String()
}

// renderEntry formats one day with its topics.
func renderEntry(s *styles.Styles, e domain.StudyPlanEntry) string {
	header := fmt.Sprintf("%s Day %d  %s  %s  %.1fh",
		s.Checkbox(e.Completed), e.Day, s.Muted.Render(e.DateString()), s.Subtitle.Render(e.Subject), e.Hours)

	lines := []string{header}
	for _, topic := range e.Topics {
		lines = append(lines, s.Normal.Render("      - "+topic))
	}
	return strings.Join(lines, "\n")
}
