package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
	planview "github.com/custodia-labs/preppal/internal/adapters/driving/tui/views/plan"
	"github.com/custodia-labs/preppal/internal/core/domain"
)

var (
	planExamDate string
	planHours    float64
	planSubjects []string
	planSave     bool
	planFormat   string
	planID       string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a day-by-day study plan up to an exam",
	Long: `Spreads your subjects over the days from tomorrow up to the exam,
rotating subjects day by day, each day listing topics to cover.

Examples:
  preppal plan --exam-date 2026-06-01 --hours 3 --subject Math --subject Physics
  preppal plan --exam-date 2026-06-01 --subject Biology --save
  preppal plan show
  preppal plan complete 1`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var planShowCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show a saved plan (default: the latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlanShow,
}

var planCompleteCmd = &cobra.Command{
	Use:   "complete [day]",
	Short: "Mark a day of a saved plan as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanComplete,
}

func init() {
	planCmd.Flags().StringVar(&planExamDate, "exam-date", "", "exam date (YYYY-MM-DD)")
	planCmd.Flags().Float64Var(&planHours, "hours", 2, "study hours per day (1-12)")
	planCmd.Flags().StringSliceVarP(&planSubjects, "subject", "s", nil, "subject to study (repeatable)")
	planCmd.Flags().BoolVar(&planSave, "save", false, "save the plan to track progress")
	planCmd.PersistentFlags().StringVarP(&planFormat, "format", "f", formatText, "output format: text, json or yaml")
	planCompleteCmd.Flags().StringVar(&planID, "plan", "", "plan ID (default: the latest)")

	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planCompleteCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	if plannerService == nil {
		return errors.New("planner service not configured")
	}
	if err := checkFormat(planFormat); err != nil {
		return err
	}
	if planExamDate == "" {
		return errors.New("--exam-date is required")
	}
	examDate, err := time.Parse(domain.PlanDateLayout, planExamDate)
	if err != nil {
		return fmt.Errorf("invalid --exam-date %q: use YYYY-MM-DD", planExamDate)
	}

	ctx := commandContext(cmd)
	plan, err := plannerService.Build(ctx, domain.PlanRequest{
		ExamDate:    examDate,
		HoursPerDay: planHours,
		Subjects:    planSubjects,
	})
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	if planSave {
		if err := plannerService.Save(ctx, plan); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}
	}

	return outputPlan(cmd, plan)
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	if plannerService == nil {
		return errors.New("planner service not configured")
	}
	if err := checkFormat(planFormat); err != nil {
		return err
	}

	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	plan, err := plannerService.Get(commandContext(cmd), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && id == "" {
			return errors.New("no saved plans; create one with 'preppal plan --save'")
		}
		return fmt.Errorf("failed to load plan: %w", err)
	}

	return outputPlan(cmd, plan)
}

func runPlanComplete(cmd *cobra.Command, args []string) error {
	if plannerService == nil {
		return errors.New("planner service not configured")
	}

	day, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid day %q: must be a number", args[0])
	}

	plan, err := plannerService.Complete(commandContext(cmd), planID, day)
	if err != nil {
		return fmt.Errorf("failed to complete day: %w", err)
	}

	cmd.Printf("Day %d done. Progress: %d/%d days (%.0f%%)\n",
		day, plan.CompletedDays(), plan.TotalDays, plan.Progress()*100)
	return nil
}

func outputPlan(cmd *cobra.Command, plan *domain.StudyPlan) error {
	if planFormat != formatText {
		return writeStructured(cmd, planFormat, plan)
	}

	if isTerminal(cmd) {
		cmd.Println(planview.Render(styles.DefaultStyles(), plan))
		return nil
	}

	printPlan(cmd, plan)
	return nil
}

// printPlan writes the plan as plain text.
func printPlan(cmd *cobra.Command, plan *domain.StudyPlan) {
	cmd.Printf("Study plan: %d days, %.1f hours\n", plan.TotalDays, plan.TotalHours)
	if plan.ID != "" {
		cmd.Printf("ID: %s\n", plan.ID)
	}
	cmd.Println()

	for _, e := range plan.Entries {
		mark := " "
		if e.Completed {
			mark = "x"
		}
		cmd.Printf("[%s] Day %d  %s  %s  %.1fh\n", mark, e.Day, e.DateString(), e.Subject, e.Hours)
		if len(e.Topics) > 0 {
			cmd.Printf("      %s\n", strings.Join(e.Topics, "; "))
		}
	}
}
