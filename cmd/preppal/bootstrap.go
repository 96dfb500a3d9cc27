package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/preppal/internal/adapters/driven/ai"
	"github.com/custodia-labs/preppal/internal/adapters/driven/config/file"
	"github.com/custodia-labs/preppal/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/preppal/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/preppal/internal/adapters/driving/cli"
	"github.com/custodia-labs/preppal/internal/connectors/filesystem"
	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/core/services"
	"github.com/custodia-labs/preppal/internal/logger"
	"github.com/custodia-labs/preppal/internal/normalisers"
	"github.com/custodia-labs/preppal/internal/pool"
	"github.com/custodia-labs/preppal/internal/postprocessors/chunker"
)

// bootstrap wires adapters into services. The document index lives in
// memory for the life of the process; history and plans go to SQLite.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	var configStore driven.ConfigStore
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		logger.Warn("Config unavailable, settings will not be saved: %v", err)
		configStore = memory.NewConfigStore(nil)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	aiResult := ai.Initialise(settings, prompts)
	for _, w := range aiResult.Warnings {
		logger.Warn("Falling back to offline mode: %s", w)
	}

	split, err := chunker.New(
		chunker.WithChunkSize(settings.Chunker.Size),
		chunker.WithOverlap(settings.Chunker.Overlap),
	)
	if err != nil {
		aiResult.Close()
		return nil, fmt.Errorf("chunker settings: %w", err)
	}

	workers, err := pool.New("ingest", settings.Workers)
	if err != nil {
		aiResult.Close()
		return nil, fmt.Errorf("starting workers: %w", err)
	}

	var (
		history driven.HistoryStore = memory.NewHistoryStore()
		plans   driven.PlanStore    = memory.NewPlanStore()
		closeDB                     = func() error { return nil }
	)
	if store, err := sqlite.NewStore(opts.DataDir); err != nil {
		logger.Warn("Database unavailable, history and plans last for this run only: %v", err)
	} else {
		history, plans, closeDB = store.HistoryStore(), store.PlanStore(), store.Close
	}

	docStore := memory.NewDocumentStore()
	docs := services.NewDocumentService(docStore, split, aiResult.EmbeddingService,
		services.WithNormaliserRegistry(normalisers.Default()),
		services.WithWorkerPool(workers),
	)
	retriever := services.NewRetriever(docStore, aiResult.EmbeddingService)

	chat := services.NewChatService(retriever, aiResult.LLMService, history,
		services.WithContextChunks(settings.TopK))
	chat.SetPromptStore(prompts)

	var plannerOpts []services.PlannerOption
	if aiResult.TopicBreakdown != nil {
		plannerOpts = append(plannerOpts, services.WithTopicBreakdown(aiResult.TopicBreakdown))
	}

	return &cli.Services{
		Document:  docs,
		Retrieval: retriever,
		Chat:      chat,
		Quiz:      services.NewQuizGenerator(docStore, retriever, aiResult.Synthesizer),
		Planner:   services.NewStudyPlanner(plans, plannerOpts...),
		Settings:  settingsSvc,
		TopK:      settings.TopK,
		FolderSync: func(subject string) driving.FolderSyncService {
			return services.NewFolderSync(docs, subject)
		},
		OpenFolder: func(path string) (driven.Connector, error) {
			c := filesystem.New(path)
			if err := c.Validate(context.Background()); err != nil {
				return nil, err
			}
			return c, nil
		},
		ReadFile: func(path string) (*domain.RawDocument, error) {
			return filesystem.ReadFile(path)
		},
		Close: func() {
			workers.Release()
			aiResult.Close()
			if err := closeDB(); err != nil {
				logger.Warn("closing database: %v", err)
			}
		},
	}, nil
}
