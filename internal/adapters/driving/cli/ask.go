package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

var (
	askDocs []string
	askJSON bool

	historyLimit int
	historyClear bool
	historyJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your study material",
	Long: `Retrieves the most relevant passages and answers the question from
them, citing the file and chunk each passage came from. Without a
configured LLM the answer quotes the passages directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous questions and answers",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askDocs, "doc", "d", nil, "restrict to these document IDs")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of recent exchanges (0 = all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete the chat history")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output history as JSON")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	answer, err := chatService.Ask(commandContext(cmd), args[0], askDocs)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	printSources(cmd, answer.Sources)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, s := range sources {
		cmd.Printf("  - %s, chunk %d (%.2f)\n", s.Filename, s.ChunkIndex, s.Score)
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx := commandContext(cmd)

	if historyClear {
		if err := chatService.ClearHistory(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		cmd.Println("Chat history cleared.")
		return nil
	}

	exchanges, err := chatService.History(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyJSON {
		if exchanges == nil {
			exchanges = []domain.ChatExchange{}
		}
		data, err := json.MarshalIndent(exchanges, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(exchanges) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for i, ex := range exchanges {
		if i > 0 {
			cmd.Println()
		}
		cmd.Printf("[%s] Q: %s\n", ex.Timestamp.Local().Format("2006-01-02 15:04"), ex.Query)
		cmd.Printf("A: %s\n", ex.Answer)
	}
	return nil
}
