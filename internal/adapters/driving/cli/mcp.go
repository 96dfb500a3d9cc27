package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preppal/internal/adapters/driving/mcp"
	"github.com/custodia-labs/preppal/internal/logger"
)

var (
	mcpPort  int
	mcpWatch []string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an AI assistant can search
your notes, answer from them, write quizzes and build study plans.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Use --watch to index a folder and keep it in step with edits while the
server runs.

Examples:
  # Stdio mode (default, for Claude Desktop)
  preppal mcp serve --watch ~/notes

  # HTTP mode (for MCP Inspector, remote access)
  preppal mcp serve --port 8080 --watch ~/notes

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "preppal": {
        "command": "/path/to/preppal",
        "args": ["mcp", "serve", "--watch", "/path/to/notes"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringSliceVarP(&mcpWatch, "watch", "w", nil, "folder to index and keep in sync (repeatable)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer builds the server. Tests replace it.
var newMCPServer = func(ports *mcp.Ports) (mcpRunner, error) {
	return mcp.NewServer(ports)
}

// mcpRunner is the part of the MCP server the command drives.
type mcpRunner interface {
	Run(ctx context.Context) error
	RunHTTP(ctx context.Context, addr string) error
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Document:  documentService,
		Chat:      chatService,
		Quiz:      quizService,
		Planner:   plannerService,
		TopK:      defaultTopK,
	}

	server, err := newMCPServer(ports)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	for _, dir := range mcpWatch {
		if err := startWatch(ctx, &wg, dir); err != nil {
			return err
		}
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// startWatch indexes dir, then applies its changes in the background
// until ctx is cancelled.
func startWatch(ctx context.Context, wg *sync.WaitGroup, dir string) error {
	if newFolderSync == nil || openFolder == nil {
		return errors.New("folder sync not configured")
	}

	connector, err := openFolder(dir)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}

	syncer := newFolderSync("")
	status, err := syncer.Sync(ctx, connector)
	if err != nil {
		connector.Close()
		return fmt.Errorf("failed to index %s: %w", dir, err)
	}
	logger.Info("Indexed %s: %d documents", dir, status.DocumentsProcessed)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer connector.Close()
		if err := syncer.Watch(ctx, connector); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch %s stopped: %v", dir, err)
		}
	}()
	return nil
}
