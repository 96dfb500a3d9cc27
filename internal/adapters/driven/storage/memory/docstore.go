package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// entry is a committed document with its chunks and their unit vectors.
// Entries are never modified after commit, so snapshots may share them.
type entry struct {
	doc    domain.Document
	seq    uint64
	chunks []domain.Chunk
	units  [][]float32
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// One RWMutex guards document metadata and the vector index together.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*entry
	chunkIDs  map[string]string
	dims      int
	seq       uint64
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*entry),
		chunkIDs:  make(map[string]string),
	}
}

// Commit inserts a document and its embedded chunks in one step.
func (s *DocumentStore) Commit(_ context.Context, doc domain.Document, chunks []domain.Chunk) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidArgument)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNoContent)
	}
	if len(chunks) != len(doc.ChunkIDs) {
		return fmt.Errorf("%w: document %s lists %d chunks, got %d",
			domain.ErrInvalidArgument, doc.ID, len(doc.ChunkIDs), len(chunks))
	}

	dims := len(chunks[0].Embedding)
	e := &entry{
		doc:    doc,
		chunks: make([]domain.Chunk, len(chunks)),
		units:  make([][]float32, len(chunks)),
	}
	e.doc.ChunkIDs = slices.Clone(doc.ChunkIDs)

	for i, c := range chunks {
		switch {
		case c.DocumentID != doc.ID:
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q", domain.ErrInvalidArgument, c.ID, c.DocumentID, doc.ID)
		case c.ID != doc.ChunkIDs[i] || c.Index != i:
			return fmt.Errorf("%w: chunk %d out of order", domain.ErrInvalidArgument, i)
		case len(c.Embedding) == 0:
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrEmbeddingFailed, i)
		case len(c.Embedding) != dims:
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				domain.ErrEmbeddingFailed, i, len(c.Embedding), dims)
		}
		c.Embedding = slices.Clone(c.Embedding)
		e.chunks[i] = c
		e.units[i] = normalise(c.Embedding)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrAlreadyExists)
	}
	for _, c := range chunks {
		if _, exists := s.chunkIDs[c.ID]; exists {
			return fmt.Errorf("chunk %s: %w", c.ID, domain.ErrAlreadyExists)
		}
	}
	if s.dims != 0 && s.dims != dims {
		return fmt.Errorf("%w: index holds %d-dimension vectors, document has %d",
			domain.ErrEmbeddingFailed, s.dims, dims)
	}

	s.seq++
	e.seq = s.seq
	s.documents[doc.ID] = e
	for _, c := range chunks {
		s.chunkIDs[c.ID] = doc.ID
	}
	s.dims = dims
	return nil
}

// Delete removes a document and every chunk it owns.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.documents[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	for _, c := range e.chunks {
		delete(s.chunkIDs, c.ID)
	}
	delete(s.documents, id)
	if len(s.documents) == 0 {
		s.dims = 0
	}
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	e, ok := s.documents[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc := e.doc
	doc.ChunkIDs = slices.Clone(e.doc.ChunkIDs)
	return &doc, nil
}

// Chunks returns the chunks of a document in index order.
func (s *DocumentStore) Chunks(_ context.Context, id string) ([]domain.Chunk, error) {
	s.mu.RLock()
	e, ok := s.documents[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	out := make([]domain.Chunk, len(e.chunks))
	for i, c := range e.chunks {
		c.Embedding = slices.Clone(c.Embedding)
		out[i] = c
	}
	return out, nil
}

// List returns every document ordered by upload time, then commit order.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	entries, _ := s.snapshot(nil)
	docs := make([]domain.Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
		docs[i].ChunkIDs = slices.Clone(e.doc.ChunkIDs)
	}
	return docs, nil
}

// Search ranks candidate chunks by cosine similarity to the query.
// Ties are broken by document upload time, then chunk index.
func (s *DocumentStore) Search(_ context.Context, query []float32, docIDs []string, topK int) ([]domain.QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}

	entries, dims := s.snapshot(docIDs)

	results := []domain.QueryResult{}
	if len(entries) == 0 {
		return results, nil
	}
	if len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidArgument, len(query), dims)
	}

	q := normalise(query)
	for _, e := range entries {
		for i, c := range e.chunks {
			results = append(results, resultOf(e, c, dot(q, e.units[i])))
		}
	}

	// entries are already in upload order and chunks in index order, so a
	// stable sort on score alone keeps the tie-break order.
	slices.SortStableFunc(results, func(a, b domain.QueryResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Sample picks up to n chunks round-robin across documents in upload order,
// taking chunk 0 of every document, then chunk 1, and so on.
func (s *DocumentStore) Sample(_ context.Context, docIDs []string, n int) ([]domain.QueryResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", domain.ErrInvalidArgument, n)
	}

	entries, _ := s.snapshot(docIDs)
	results := []domain.QueryResult{}
	for round := 0; len(results) < n; round++ {
		took := false
		for _, e := range entries {
			if round >= len(e.chunks) {
				continue
			}
			results = append(results, resultOf(e, e.chunks[round], 0))
			took = true
			if len(results) == n {
				break
			}
		}
		if !took {
			break
		}
	}
	return results, nil
}

// Stats reports index size.
func (s *DocumentStore) Stats(_ context.Context) (domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.IndexStats{
		Documents:  len(s.documents),
		Chunks:     len(s.chunkIDs),
		Dimensions: s.dims,
	}, nil
}

// snapshot returns the entries in scope ordered by upload time, then commit
// order, together with the index dimension. Unknown ids contribute nothing.
func (s *DocumentStore) snapshot(docIDs []string) ([]*entry, int) {
	s.mu.RLock()
	dims := s.dims
	var entries []*entry
	if len(docIDs) == 0 {
		entries = make([]*entry, 0, len(s.documents))
		for _, e := range s.documents {
			entries = append(entries, e)
		}
	} else {
		seen := make(map[string]bool, len(docIDs))
		for _, id := range docIDs {
			if e, ok := s.documents[id]; ok && !seen[id] {
				seen[id] = true
				entries = append(entries, e)
			}
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		if c := a.doc.UploadedAt.Compare(b.doc.UploadedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return entries, dims
}

func resultOf(e *entry, c domain.Chunk, score float64) domain.QueryResult {
	return domain.QueryResult{
		ChunkID:    c.ID,
		DocumentID: e.doc.ID,
		Filename:   e.doc.Filename,
		ChunkIndex: c.Index,
		Score:      score,
		Text:       c.Text,
	}
}
