package driving

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// FolderSyncService keeps the index in step with a connector's documents.
type FolderSyncService interface {
	// Sync ingests every document the connector currently holds.
	Sync(ctx context.Context, connector driven.Connector) (*SyncStatus, error)

	// Watch applies connector changes until ctx is cancelled or the
	// connector stops.
	Watch(ctx context.Context, connector driven.Connector) error

	// Status reports counts for the current or last run.
	Status() SyncStatus
}

// SyncStatus reports synchronisation progress.
type SyncStatus struct {
	Running            bool `json:"running"`
	DocumentsProcessed int  `json:"documents_processed"`
	DocumentsDeleted   int  `json:"documents_deleted"`
	Skipped            int  `json:"skipped"`
	ErrorCount         int  `json:"error_count"`
}
