package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
)

// Ensure FolderSync implements the interface.
var _ driving.FolderSyncService = (*FolderSync)(nil)

// FolderSync ingests documents from a connector and keeps them current.
// A changed file replaces its earlier document; a removed file deletes it.
type FolderSync struct {
	docs    driving.DocumentService
	subject string

	mu      sync.RWMutex
	tracked map[string]string // URI -> document ID
	status  driving.SyncStatus
}

// NewFolderSync creates a folder sync that files every document under subject.
func NewFolderSync(docs driving.DocumentService, subject string) *FolderSync {
	return &FolderSync{
		docs:    docs,
		subject: subject,
		tracked: make(map[string]string),
	}
}

// Sync ingests every document the connector currently holds.
func (f *FolderSync) Sync(ctx context.Context, connector driven.Connector) (*driving.SyncStatus, error) {
	if err := connector.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate %s connector: %w", connector.Type(), err)
	}

	f.begin()
	defer f.end()
	logger.Info("Starting %s sync", connector.Type())

	docsCh, errsCh := connector.FullSync(ctx)
	if err := f.processDocuments(ctx, docsCh, errsCh); err != nil {
		return nil, err
	}

	status := f.Status()
	logger.Info("Sync complete: %d documents, %d skipped, %d errors",
		status.DocumentsProcessed, status.Skipped, status.ErrorCount)
	return &status, nil
}

// Watch applies connector changes until ctx is cancelled or the connector
// closes its change stream.
func (f *FolderSync) Watch(ctx context.Context, connector driven.Connector) error {
	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", connector.Type(), err)
	}

	f.begin()
	defer f.end()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			f.apply(ctx, change)
		}
	}
}

// Status reports counts for the current or last run.
func (f *FolderSync) Status() driving.SyncStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

func (f *FolderSync) processDocuments(
	ctx context.Context,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("connector error: %w", err)
			}

		case raw, ok := <-docsCh:
			if !ok {
				return nil
			}
			f.ingest(ctx, &raw)
		}
	}
}

func (f *FolderSync) apply(ctx context.Context, change domain.RawDocumentChange) {
	uri := change.Document.URI
	logger.Debug("Change %s: %s", change.Type, uri)

	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		f.ingest(ctx, &change.Document)
	case domain.ChangeDeleted:
		if f.forget(ctx, uri) {
			f.update(func(s *driving.SyncStatus) { s.DocumentsDeleted++ })
		}
	}
}

// ingest indexes raw, replacing any document previously indexed from the
// same URI once the new one is committed.
func (f *FolderSync) ingest(ctx context.Context, raw *domain.RawDocument) {
	logger.Debug("Processing: %s", raw.URI)

	result, err := f.docs.IngestFile(ctx, raw, f.subject)
	switch {
	case errors.Is(err, domain.ErrUnsupportedType), errors.Is(err, domain.ErrNoContent):
		logger.Debug("Skipping %s: %v", raw.URI, err)
		f.update(func(s *driving.SyncStatus) { s.Skipped++ })
		return
	case err != nil:
		logger.Warn("Failed to ingest %s: %v", raw.URI, err)
		f.update(func(s *driving.SyncStatus) { s.ErrorCount++ })
		return
	}

	f.forget(ctx, raw.URI)
	f.mu.Lock()
	f.tracked[raw.URI] = result.DocumentID
	f.status.DocumentsProcessed++
	f.mu.Unlock()
}

// forget deletes the document indexed from uri, reporting whether one existed.
func (f *FolderSync) forget(ctx context.Context, uri string) bool {
	f.mu.Lock()
	id, ok := f.tracked[uri]
	delete(f.tracked, uri)
	f.mu.Unlock()
	if !ok {
		return false
	}

	if err := f.docs.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Failed to delete %s: %v", uri, err)
		f.update(func(s *driving.SyncStatus) { s.ErrorCount++ })
		return false
	}
	return true
}

func (f *FolderSync) update(fn func(*driving.SyncStatus)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.status)
}

func (f *FolderSync) begin() {
	f.update(func(s *driving.SyncStatus) { *s = driving.SyncStatus{Running: true} })
}

func (f *FolderSync) end() {
	f.update(func(s *driving.SyncStatus) { s.Running = false })
}
