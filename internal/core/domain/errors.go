package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidConfig indicates bad chunking parameters.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidArgument indicates a bad top-k, question count, date range or similar.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same id is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoContent indicates the index (or the requested scope) has nothing to work with.
	ErrNoContent = errors.New("no content")

	// ErrEmbeddingFailed indicates the embedding collaborator failed.
	// During ingestion this aborts the whole document.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the synthesis collaborator failed or kept
	// producing malformed output after the retry budget was spent.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrMalformedOutput indicates a collaborator answered with output that
	// could not be parsed into the expected shape. It is retryable.
	ErrMalformedOutput = errors.New("malformed output")

	// ErrUnsupportedType indicates no text extractor handles a file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer synthesis and LLM-backed quizzes are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates a provider rejected a call for exceeding its quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
