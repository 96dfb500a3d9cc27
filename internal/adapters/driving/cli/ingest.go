package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestSubject string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index study files or folders",
	Long: `Extracts text from each file (plain text, Markdown, HTML or PDF),
splits it into chunks and indexes them for search, answers and quizzes.
Folders are walked recursively; hidden files are skipped.

The index lives for the life of the process, so ingest reports what was
indexed. Use --materials with other commands, or 'mcp serve --watch', to
work against your notes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSubject, "subject", "s", "", "subject to file the documents under")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := commandContext(cmd)

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		if info.IsDir() {
			cmd.Printf("Indexing folder %s...\n", path)
			status, err := indexFolder(ctx, path, ingestSubject)
			if err != nil {
				return err
			}
			cmd.Printf("  %d documents indexed, %d skipped, %d errors\n",
				status.DocumentsProcessed, status.Skipped, status.ErrorCount)
			continue
		}

		if readFile == nil {
			return errors.New("file reader not configured")
		}
		raw, err := readFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		result, err := documentService.IngestFile(ctx, raw, ingestSubject)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		cmd.Printf("Indexed %s: %d chunks (%s)\n", filepath.Base(path), result.ChunkCount, result.DocumentID)
	}

	stats, err := documentService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}
	cmd.Printf("\nIndex: %d documents, %d chunks\n", stats.Documents, stats.Chunks)
	return nil
}
