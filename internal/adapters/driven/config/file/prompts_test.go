package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T) *PromptStore {
	t.Helper()
	store, err := NewPromptStore(filepath.Join(t.TempDir(), "prompts"))
	require.NoError(t, err)
	return store
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".preppal", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.NoDirExists(t, dir)
}

func TestPromptStore_SeedsDirectory(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for name, want := range driven.DefaultPrompts() {
		data, err := os.ReadFile(filepath.Join(store.Dir(), name+".txt"))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data))
	}
	assert.FileExists(t, filepath.Join(store.Dir(), "README.md"))
}

func TestPromptStore_KeepsUserFiles(t *testing.T) {
	store := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0700))
	custom := "Explain like a tutor.\n\nNotes:\n%s\n\nQ: %s"
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "answer.txt"), []byte(custom), 0600))

	got, err := store.Load(driven.PromptAnswer)

	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestPromptStore_RejectsBrokenPlaceholders(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing verb", "Answer from the notes: %s"},
		{"swapped verbs", "List topics for %s, %d of them."},
		{"extra verb", "Context %s question %s student %s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestPromptStore(t)
			require.NoError(t, os.MkdirAll(store.Dir(), 0700))
			prompt := driven.PromptAnswer
			if tt.name == "swapped verbs" {
				prompt = driven.PromptTopicBreakdown
			}
			require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), prompt+".txt"), []byte(tt.content), 0600))

			got, err := store.Load(prompt)

			require.NoError(t, err)
			assert.Equal(t, driven.DefaultPrompt(prompt), got)
		})
	}
}

func TestPromptStore_DeletedFileUsesBuiltin(t *testing.T) {
	store := newTestPromptStore(t)
	_, err := store.Load(driven.PromptQuizItem)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(store.Dir(), "topic_breakdown.txt")))

	got, err := store.Load(driven.PromptTopicBreakdown)

	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompt(driven.PromptTopicBreakdown), got)
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store := newTestPromptStore(t)

	_, err := store.Load("flashcards")

	assert.Error(t, err)
}

func TestPromptStore_ExtraPromptFile(t *testing.T) {
	store := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "flashcards.txt"), []byte("  Make cards for %s  \n"), 0600))

	got, err := store.Load("flashcards")

	require.NoError(t, err)
	assert.Equal(t, "Make cards for %s", got)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store := newTestPromptStore(t)
	path := filepath.Join(store.Dir(), "answer.txt")

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	edited := "Be brief.\n%s\n%s"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0600))

	got, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompt(driven.PromptAnswer), got, "served from cache")

	store.Reload()

	got, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, edited, got)
}

func TestPromptStore_UnwritableDirFallsBack(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	got, err := store.Load(driven.PromptQuizItem)

	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompt(driven.PromptQuizItem), got)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store := newTestPromptStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range driven.DefaultPrompts() {
				_, err := store.Load(name)
				assert.NoError(t, err)
			}
			if i%5 == 0 {
				store.Reload()
			}
		}()
	}
	wg.Wait()
}

func TestFormatVerbs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"no verbs", nil},
		{"%s and %d", []string{"%s", "%d"}},
		{"100%% sure about %s", []string{"%s"}},
		{"trailing %", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVerbs(tt.in))
		})
	}

	for name, tmpl := range driven.DefaultPrompts() {
		assert.NotEmpty(t, formatVerbs(tmpl), name)
	}
}
