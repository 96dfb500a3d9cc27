package synthesis

import "github.com/custodia-labs/preppal/internal/core/ports/driven"

// promptLoader resolves templates from an optional store.
type promptLoader struct {
	store driven.PromptStore
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *promptLoader) SetPromptStore(store driven.PromptStore) {
	p.store = store
}

func (p *promptLoader) load(name string) string {
	if p.store != nil {
		if prompt, err := p.store.Load(name); err == nil {
			return prompt
		}
	}
	return driven.DefaultPrompt(name)
}
