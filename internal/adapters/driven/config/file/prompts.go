package file

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the file extension of prompt templates.
const promptExt = ".txt"

// PromptStore serves LLM prompt templates from user-editable files, one
// <name>.txt per prompt. The directory is seeded with the built-in templates
// on first Load, never in the constructor.
//
// A file whose format verbs differ from the built-in template (for example
// an answer prompt that lost its %s for the question) is ignored with a
// warning and the built-in template is used instead.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.preppal/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".preppal", "prompts")
	}

	return &PromptStore{
		dir:   dir,
		cache: make(map[string]string),
	}, nil
}

// Load returns the template for name. Unknown names without a file fail.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	builtin, known := driven.DefaultPrompts()[name]

	prompt, err := s.read(name)
	switch {
	case err != nil && known:
		if s.seedErr == nil {
			logger.Debug("Prompt %q: using built-in template (%v)", name, err)
		}
		prompt = builtin
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case known && !slices.Equal(formatVerbs(prompt), formatVerbs(builtin)):
		logger.Warn("Prompt %s%s must keep the placeholders %v; using the built-in template",
			name, promptExt, formatVerbs(builtin))
		prompt = builtin
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload forgets cached templates so edited files are read again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+promptExt)
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed writes the built-in templates and a README, keeping existing files.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = err
		logger.Warn("Cannot create prompt directory %s: %v", s.dir, err)
		return
	}

	files := driven.DefaultPrompts()
	files["README.md"] = promptReadme
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if name != "README.md" {
			path = s.path(name)
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = err
			logger.Warn("Cannot write %s: %v", path, err)
		}
	}
}

// formatVerbs lists the fmt verbs in a template in order, skipping "%%".
func formatVerbs(tmpl string) []string {
	var verbs []string
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '%' {
			continue
		}
		i++
		if tmpl[i] != '%' {
			verbs = append(verbs, "%"+string(tmpl[i]))
		}
	}
	return verbs
}

const promptReadme = `# PrepPal Prompts

Each .txt file here is a template PrepPal sends to the LLM.

- answer.txt: answers study questions from retrieved notes (%s context, %s question)
- quiz_item.txt: writes one multiple-choice question as JSON (%s topic, %s material)
- topic_breakdown.txt: splits a subject into study topics (%d count, %s subject)

Edit a file to change the wording. Keep its placeholders in the same order,
otherwise PrepPal ignores the file and uses the built-in template. Edits
apply to the next command, or after restarting 'preppal mcp serve'.
Delete a file to restore the default.
`
