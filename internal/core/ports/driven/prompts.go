package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer is the study assistant prompt used to answer questions.
	// The template expects %s (context) and %s (question) placeholders.
	PromptAnswer = "answer"

	// PromptQuizItem asks for one multiple-choice item as JSON.
	// The template expects %s (topic) and %s (context) placeholders.
	PromptQuizItem = "quiz_item"

	// PromptTopicBreakdown asks for a list of subtopics, one per line.
	// The template expects %d (count) and %s (subject) placeholders.
	PromptTopicBreakdown = "topic_breakdown"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultPrompts returns the built-in templates keyed by prompt name.
// Prompt stores seed user files from these and services fall back to them
// when no store is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptAnswer: `You are PrepPal, a helpful study assistant. Answer the student's question using ONLY the information provided in the context below. If the answer cannot be found in the context, say "I couldn't find that information in your study materials."

Context:
%s

Question: %s

Answer:`,

		PromptQuizItem: `You are writing one multiple-choice exam question about "%s" for a student.
Base the question ONLY on the study material below.

Study material:
%s

Respond with a single JSON object and nothing else:
{"question": "...", "options": ["...", "...", "...", "..."], "correct_index": 0, "explanation": "..."}

Rules:
- exactly 4 distinct, non-empty options
- correct_index is the 0-based index of the correct option
- the explanation says why the correct option is right, citing the material`,

		PromptTopicBreakdown: `List %d study topics for the subject "%s", in the order a student should study them.
Return one topic per line with no numbering, bullets or extra text.`,
	}
}

// DefaultPrompt returns the built-in template for name, or "" when unknown.
func DefaultPrompt(name string) string {
	return DefaultPrompts()[name]
}
