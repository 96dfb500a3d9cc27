package driven

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// Normaliser extracts study text from raw file bytes.
// Each normaliser handles specific MIME types (e.g., PDF, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts plain text from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking happens later, during ingestion.
type NormaliseResult struct {
	// Title is a display title derived from the content or filename.
	Title string

	// Text is the extracted plain text.
	Text string
}
