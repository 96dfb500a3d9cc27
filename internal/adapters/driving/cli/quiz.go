package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui"
	"github.com/custodia-labs/preppal/internal/core/domain"
)

// quizDefaultQuestions is the question count when --num is not given.
const quizDefaultQuestions = 5

var (
	quizTopic       string
	quizNum         int
	quizDocs        []string
	quizFormat      string
	quizInteractive bool
)

// runQuizTUI runs the interactive quiz. Tests replace it.
var runQuizTUI = func(cmd *cobra.Command, req domain.QuizRequest) (*domain.QuizScore, error) {
	app, err := tui.NewApp(tui.NewPorts(quizService), req)
	if err != nil {
		return nil, err
	}
	return app.WithContext(commandContext(cmd)).Run()
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice practice quiz",
	Long: `Writes multiple-choice questions grounded in your indexed material.
With --topic the questions focus on the most relevant passages; without it
they are spread across your documents.

Use --interactive to take the quiz in the terminal and get a score.

Examples:
  preppal -m ~/notes quiz --topic photosynthesis --num 5
  preppal -m ~/notes quiz --interactive
  preppal -m ~/notes quiz --format yaml > quiz.yaml`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().StringVarP(&quizTopic, "topic", "t", "", "focus the questions on a topic")
	quizCmd.Flags().IntVarP(&quizNum, "num", "n", quizDefaultQuestions, "number of questions (1-10)")
	quizCmd.Flags().StringSliceVarP(&quizDocs, "doc", "d", nil, "restrict to these document IDs")
	quizCmd.Flags().StringVarP(&quizFormat, "format", "f", formatText, "output format: text, json or yaml")
	quizCmd.Flags().BoolVarP(&quizInteractive, "interactive", "i", false, "take the quiz in the terminal")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	if quizService == nil {
		return errors.New("quiz service not configured")
	}
	if err := checkFormat(quizFormat); err != nil {
		return err
	}

	req := domain.QuizRequest{
		Topic:        quizTopic,
		DocumentIDs:  quizDocs,
		NumQuestions: quizNum,
	}

	if quizInteractive {
		return runInteractiveQuiz(cmd, req)
	}

	items, err := quizService.Generate(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("failed to generate quiz: %w", err)
	}

	if quizFormat != formatText {
		if items == nil {
			items = []domain.QuizItem{}
		}
		return writeStructured(cmd, quizFormat, items)
	}

	printQuiz(cmd, items)
	return nil
}

func runInteractiveQuiz(cmd *cobra.Command, req domain.QuizRequest) error {
	if !stdinIsTerminal() {
		return errors.New("--interactive needs a terminal")
	}

	score, err := runQuizTUI(cmd, req)
	if err != nil {
		return fmt.Errorf("failed to run quiz: %w", err)
	}
	if score == nil {
		cmd.Println("Quiz abandoned.")
		return nil
	}

	printScore(cmd, *score)
	return nil
}

// printQuiz writes the questions followed by an answer key.
func printQuiz(cmd *cobra.Command, items []domain.QuizItem) {
	for i, item := range items {
		cmd.Printf("%d. %s\n", i+1, item.Question)
		for j, opt := range item.Options {
			cmd.Printf("   %c) %s\n", 'A'+j, opt)
		}
		cmd.Println()
	}

	cmd.Println("Answers:")
	for i, item := range items {
		cmd.Printf("  %d. %c) %s\n", i+1, 'A'+item.CorrectIndex, item.Explanation)
	}
}

func printScore(cmd *cobra.Command, score domain.QuizScore) {
	cmd.Printf("Score: %d/%d (%.0f%%)\n", score.Correct, score.Total, score.Percent)
	if score.Passed {
		cmd.Println("Passed.")
		return
	}
	cmd.Printf("Below %.0f%%. Revisit questions:", domain.QuizPassPercent)
	for _, i := range score.Mistakes {
		cmd.Printf(" %d", i+1)
	}
	cmd.Println()
}
