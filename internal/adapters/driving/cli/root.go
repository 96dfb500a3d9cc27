// Package cli provides the preppal command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
	dataDir   string
	materials []string
)

// Services holds every driving port the commands use.
type Services struct {
	Document  driving.DocumentService
	Retrieval driving.RetrievalService
	Chat      driving.ChatService
	Quiz      driving.QuizService
	Planner   driving.PlannerService
	Settings  driving.SettingsService

	// TopK is the configured result count for search when no --top-k is
	// given. Zero means domain.DefaultTopK.
	TopK int

	// FolderSync ingests folders into the session index.
	FolderSync func(subject string) driving.FolderSyncService

	// OpenFolder returns a connector for a folder of study material.
	OpenFolder func(path string) (driven.Connector, error)

	// ReadFile loads a single study file.
	ReadFile func(path string) (*domain.RawDocument, error)

	// Close releases adapters. May be nil.
	Close func()
}

// Options are the locations the bootstrap builds services from.
type Options struct {
	ConfigDir string
	DataDir   string
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(opts Options) (*Services, error)

var (
	bootstrap Bootstrap
	services  *Services
)

// Service handles used by commands. They are set from Services.
var (
	documentService  driving.DocumentService
	retrievalService driving.RetrievalService
	chatService      driving.ChatService
	quizService      driving.QuizService
	plannerService   driving.PlannerService
	settingsService  driving.SettingsService
	newFolderSync    func(subject string) driving.FolderSyncService
	openFolder       func(path string) (driven.Connector, error)
	readFile         func(path string) (*domain.RawDocument, error)
	defaultTopK      = domain.DefaultTopK
)

var rootCmd = &cobra.Command{
	Use:   "preppal",
	Short: "Study assistant for your own notes",
	Long: `PrepPal indexes your study material and answers questions from it,
writes practice quizzes, and lays out a study plan up to your exam.

Documents are indexed in memory for the life of the process. Point
--materials at your notes folder to index it before each command, or run
'preppal mcp serve --watch' to keep a folder indexed for an AI assistant.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print pipeline steps to stderr")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.preppal)")
	flags.StringVar(&dataDir, "data-dir", "", "data directory for history and plans (default ~/.preppal/data)")
	flags.StringSliceVarP(&materials, "materials", "m", nil, "folder of study material to index first (repeatable)")
}

// SetBootstrap registers the function that builds services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
	if s == nil {
		s = &Services{}
	}
	documentService = s.Document
	retrievalService = s.Retrieval
	chatService = s.Chat
	quizService = s.Quiz
	plannerService = s.Planner
	settingsService = s.Settings
	newFolderSync = s.FolderSync
	openFolder = s.OpenFolder
	readFile = s.ReadFile
	defaultTopK = domain.DefaultTopK
	if s.TopK > 0 {
		defaultTopK = s.TopK
	}
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsServices(cmd) {
		return nil
	}

	if services == nil && bootstrap != nil {
		s, err := bootstrap(Options{ConfigDir: configDir, DataDir: dataDir})
		if err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		SetServices(s)
	}

	for _, dir := range materials {
		if err := syncFolder(cmd, dir, ""); err != nil {
			return err
		}
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if services != nil && services.Close != nil {
		services.Close()
	}
}

// needsServices reports whether cmd touches the services. Help and
// version run without configuration.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

// syncFolder ingests every supported file below dir into the session index.
func syncFolder(cmd *cobra.Command, dir, subject string) error {
	status, err := indexFolder(commandContext(cmd), dir, subject)
	if err != nil {
		return err
	}
	logger.Info("Indexed %s: %d documents, %d skipped, %d errors",
		dir, status.DocumentsProcessed, status.Skipped, status.ErrorCount)
	return nil
}

func indexFolder(ctx context.Context, dir, subject string) (*driving.SyncStatus, error) {
	if newFolderSync == nil || openFolder == nil {
		return nil, errors.New("folder sync not configured")
	}

	connector, err := openFolder(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	defer connector.Close()

	status, err := newFolderSync(subject).Sync(ctx, connector)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", dir, err)
	}
	return status, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
