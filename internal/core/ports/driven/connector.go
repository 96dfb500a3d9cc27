package driven

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// Connector reads study files from a source and reports changes to them.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the source is reachable (for filesystem: the path exists).
	Validate(ctx context.Context) error

	// FullSync reads every supported file from the source.
	// Both channels are closed when the sync ends.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch listens for changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}
