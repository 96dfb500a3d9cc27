package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

var (
	chunkSize    int
	chunkOverlap int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, AI providers and quiz generation.

Everything works offline by default. Configure Ollama or OpenAI to get
semantic embeddings, written answers and LLM-authored quiz questions.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure providers and quiz generation step by step.`,
	RunE:  runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and search your material.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for answers, quizzes and plan topics.`,
	RunE:  runSettingsLLM,
}

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Set chunk size and overlap",
	Long: `Set how ingested text is split. Size and overlap are counted in characters;
overlap must be smaller than size. Applies to documents ingested afterwards.`,
	Args: cobra.NoArgs,
	RunE: runSettingsChunking,
}

var settingsQuizCmd = &cobra.Command{
	Use:   "quiz [llm|extractive]",
	Short: "Choose how quiz questions are written",
	Long: `Choose the quiz synthesizer:
  llm         - the configured LLM writes each question
  extractive  - fill-in-the-blank questions built from your text (offline)`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.QuizSynthesizerLLM), string(domain.QuizSynthesizerExtractive)},
	RunE:      runSettingsQuiz,
}

func init() {
	settingsChunkingCmd.Flags().IntVar(&chunkSize, "size", domain.DefaultChunkSize, "chunk size in characters")
	settingsChunkingCmd.Flags().IntVar(&chunkOverlap, "overlap", domain.DefaultChunkOverlap, "overlap in characters")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	settingsCmd.AddCommand(settingsQuizCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunker.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunker.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.TopK)
	cmd.Printf("  Ingest workers: %d\n", settings.Workers)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider == domain.AIProviderLocal {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	printRemote(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	if settings.Embedding.RateLimit > 0 {
		cmd.Printf("  Rate limit: %.1f/s\n", settings.Embedding.RateLimit)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider == domain.AIProviderLocal {
		cmd.Println("  Provider: none (answers quote passages)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		printRemote(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	}
	cmd.Println()

	cmd.Println("[Quiz]")
	cmd.Printf("  Synthesizer: %s\n", settings.Quiz)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'preppal settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

// printRemote prints the endpoint details of a remote provider.
func printRemote(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if provider == domain.AIProviderOllama {
		if baseURL == "" {
			baseURL = domain.DefaultOllamaURL
		}
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("PrepPal Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: LLM Provider")
	cmd.Println("--------------------")
	llmConfigured, err := configureLLMProvider(cmd, reader)
	if err != nil {
		return err
	}

	cmd.Println("Step 3: Quiz Questions")
	cmd.Println("----------------------")
	kind := domain.QuizSynthesizerExtractive
	if llmConfigured {
		cmd.Println("  1. Written by the LLM")
		cmd.Println("  2. Fill-in-the-blank from your text (offline)")
		cmd.Print("\nEnter choice [1]: ")
		if parseChoice(readLine(reader), 2, 1) == 1 {
			kind = domain.QuizSynthesizerLLM
		}
	} else {
		cmd.Println("No LLM configured, using fill-in-the-blank questions.")
	}
	if err := settingsService.SetQuizSynthesizer(kind); err != nil {
		return fmt.Errorf("failed to set quiz synthesizer: %w", err)
	}
	cmd.Printf("Quiz synthesizer set to: %s\n\n", kind)

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	_, err := configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
	return err
}

func runSettingsChunking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetChunking(chunkSize, chunkOverlap); err != nil {
		return fmt.Errorf("failed to set chunking: %w", err)
	}

	cmd.Printf("Chunking set to size %d, overlap %d.\n", chunkSize, chunkOverlap)
	return nil
}

func runSettingsQuiz(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	kind := domain.QuizSynthesizerKind(args[0])
	if !kind.IsValid() {
		return fmt.Errorf("unknown quiz synthesizer %q (use llm or extractive)", args[0])
	}

	if err := settingsService.SetQuizSynthesizer(kind); err != nil {
		return fmt.Errorf("failed to set quiz synthesizer: %w", err)
	}

	cmd.Printf("Quiz synthesizer set to: %s\n", kind)
	if kind == domain.QuizSynthesizerLLM {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && !settings.LLM.IsConfigured() {
			cmd.Println("\nNote: no LLM is configured, so quizzes stay fill-in-the-blank.")
			cmd.Println("Run 'preppal settings llm' to configure one.")
		}
	}
	return nil
}

// selectProvider prompts for a provider, its model and API key.
func selectProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	providers []domain.AIProvider,
	describe func(domain.AIProvider) string,
	defaults map[domain.AIProvider]string,
) (provider domain.AIProvider, model, apiKey string, err error) {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, describe(p))
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider = providers[idx-1]

	if defaultModel, ok := defaults[provider]; ok && provider != domain.AIProviderLocal {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model = readLine(reader)
		if model == "" {
			model = defaultModel
		}
	} else {
		model = defaults[provider]
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank keeps the saved key): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	return provider, model, apiKey, nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	provider, model, apiKey, err := selectProvider(cmd, reader,
		domain.AllProviders(), domain.AIProvider.Description, domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", provider.Description(), model)
	cmd.Println("Documents ingested with another provider must be re-ingested.")
	cmd.Println()
	return nil
}

// configureLLMProvider reports whether a remote LLM ended up configured.
//
//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) (bool, error) {
	cmd.Println("Select LLM Provider")
	provider, model, apiKey, err := selectProvider(cmd, reader,
		domain.AllProviders(), describeLLMProvider, domain.DefaultLLMModels())
	if err != nil {
		return false, err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return false, fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if provider == domain.AIProviderLocal {
		cmd.Println("No LLM: answers quote the retrieved passages.")
		cmd.Println()
		return false, nil
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return false, fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", provider.Description(), model)
	return true, nil
}

func describeLLMProvider(p domain.AIProvider) string {
	if p == domain.AIProviderLocal {
		return "None (answers quote passages, offline)"
	}
	return p.Description()
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, falling back to reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
