package driven

import "context"

// Chunker splits extracted document text into overlapping pieces.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Split returns the chunk texts in order. Blank input yields no chunks.
	Split(ctx context.Context, text string) ([]string, error)
}
