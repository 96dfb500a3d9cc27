package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

// buildDoc creates a document whose chunk i has embedding vectors[i].
func buildDoc(id string, uploaded time.Time, vectors ...[]float32) (domain.Document, []domain.Chunk) {
	doc := domain.Document{
		ID:         id,
		Filename:   id + ".txt",
		UploadedAt: uploaded,
	}
	chunks := make([]domain.Chunk, len(vectors))
	for i, v := range vectors {
		cid := fmt.Sprintf("%s-c%d", id, i)
		doc.ChunkIDs = append(doc.ChunkIDs, cid)
		chunks[i] = domain.Chunk{
			ID:         cid,
			DocumentID: id,
			Index:      i,
			Text:       fmt.Sprintf("text %s %d", id, i),
			Embedding:  v,
		}
	}
	return doc, chunks
}

func commit(t *testing.T, s *DocumentStore, id string, uploaded time.Time, vectors ...[]float32) domain.Document {
	t.Helper()
	doc, chunks := buildDoc(id, uploaded, vectors...)
	require.NoError(t, s.Commit(context.Background(), doc, chunks))
	return doc
}

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunkIDs)
}

func TestDocumentStore_Commit_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	commit(t, store, "doc-1", baseTime, []float32{1, 0}, []float32{0, 1})

	doc, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1.txt", doc.Filename)
	assert.Equal(t, []string{"doc-1-c0", "doc-1-c1"}, doc.ChunkIDs)

	chunks, err := store.Chunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[1].Index)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{Documents: 1, Chunks: 2, Dimensions: 2}, stats)
}

func TestDocumentStore_Commit_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.Document, []domain.Chunk) []domain.Chunk
		want   error
	}{
		{"empty id", func(d *domain.Document, c []domain.Chunk) []domain.Chunk { d.ID = ""; return c }, domain.ErrInvalidArgument},
		{"no chunks", func(d *domain.Document, _ []domain.Chunk) []domain.Chunk { d.ChunkIDs = nil; return nil }, domain.ErrNoContent},
		{"count mismatch", func(d *domain.Document, c []domain.Chunk) []domain.Chunk { return c[:1] }, domain.ErrInvalidArgument},
		{"foreign chunk", func(_ *domain.Document, c []domain.Chunk) []domain.Chunk { c[1].DocumentID = "other"; return c }, domain.ErrInvalidArgument},
		{"out of order", func(_ *domain.Document, c []domain.Chunk) []domain.Chunk { c[0].Index = 5; return c }, domain.ErrInvalidArgument},
		{"missing embedding", func(_ *domain.Document, c []domain.Chunk) []domain.Chunk { c[1].Embedding = nil; return c }, domain.ErrEmbeddingFailed},
		{"ragged embeddings", func(_ *domain.Document, c []domain.Chunk) []domain.Chunk { c[1].Embedding = []float32{1}; return c }, domain.ErrEmbeddingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewDocumentStore()
			doc, chunks := buildDoc("doc-1", baseTime, []float32{1, 0}, []float32{0, 1})
			chunks = tt.mutate(&doc, chunks)

			err := store.Commit(ctx, doc, chunks)
			assert.ErrorIs(t, err, tt.want)

			stats, _ := store.Stats(ctx)
			assert.Zero(t, stats.Documents)
			assert.Zero(t, stats.Chunks)
		})
	}
}

func TestDocumentStore_Commit_Duplicate(t *testing.T) {
	store := NewDocumentStore()
	commit(t, store, "doc-1", baseTime, []float32{1, 0})

	doc, chunks := buildDoc("doc-1", baseTime, []float32{1, 0})
	assert.ErrorIs(t, store.Commit(context.Background(), doc, chunks), domain.ErrAlreadyExists)
}

func TestDocumentStore_Commit_DimensionMismatch(t *testing.T) {
	store := NewDocumentStore()
	commit(t, store, "doc-1", baseTime, []float32{1, 0})

	doc, chunks := buildDoc("doc-2", baseTime, []float32{1, 0, 0})
	err := store.Commit(context.Background(), doc, chunks)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	_, err = store.Get(context.Background(), "doc-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	commit(t, store, "doc-1", baseTime, []float32{1, 0}, []float32{0.9, 0.1})
	commit(t, store, "doc-2", baseTime.Add(time.Minute), []float32{1, 0})

	require.NoError(t, store.Delete(ctx, "doc-1"))

	results, err := store.Search(ctx, []float32{1, 0}, nil, 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "doc-1", r.DocumentID)
	}
	assert.Len(t, results, 1)

	assert.ErrorIs(t, store.Delete(ctx, "doc-1"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "never-existed"), domain.ErrNotFound)

	_, err = store.Chunks(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Delete_LastDocumentResetsDimensions(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	commit(t, store, "doc-1", baseTime, []float32{1, 0})
	require.NoError(t, store.Delete(ctx, "doc-1"))

	commit(t, store, "doc-2", baseTime, []float32{1, 0, 0})
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Dimensions)
}

func TestDocumentStore_List_OrderedByUploadTime(t *testing.T) {
	store := NewDocumentStore()
	commit(t, store, "late", baseTime.Add(2*time.Hour), []float32{1})
	commit(t, store, "early", baseTime, []float32{1})
	commit(t, store, "same-a", baseTime.Add(time.Hour), []float32{1})
	commit(t, store, "same-b", baseTime.Add(time.Hour), []float32{1})

	docs, err := store.List(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"early", "same-a", "same-b", "late"}, ids)
}

func TestDocumentStore_Search_EmptyIndex(t *testing.T) {
	store := NewDocumentStore()

	results, err := store.Search(context.Background(), []float32{1, 0}, nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDocumentStore_Search_InvalidTopK(t *testing.T) {
	store := NewDocumentStore()
	for _, k := range []int{0, -3} {
		_, err := store.Search(context.Background(), []float32{1}, nil, k)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	}
}

func TestDocumentStore_Search_QueryDimensionMismatch(t *testing.T) {
	store := NewDocumentStore()
	commit(t, store, "doc-1", baseTime, []float32{1, 0})

	_, err := store.Search(context.Background(), []float32{1, 0, 0}, nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDocumentStore_Search_Ranking(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	commit(t, store, "doc-1", baseTime, []float32{0, 1}, []float32{1, 1})
	commit(t, store, "doc-2", baseTime.Add(time.Minute), []float32{2, 0}, []float32{-1, 0})

	results, err := store.Search(ctx, []float32{1, 0}, nil, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "doc-2-c0", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "doc-1-c1", results[1].ChunkID)
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)
	assert.Equal(t, "doc-1-c0", results[2].ChunkID)
	assert.InDelta(t, 0.0, results[2].Score, 1e-6)
	assert.Equal(t, "doc-1.txt", results[1].Filename)
}

func TestDocumentStore_Search_TieBreak(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	// Committed out of upload order; identical vectors everywhere.
	commit(t, store, "newer", baseTime.Add(time.Hour), []float32{1, 0}, []float32{1, 0})
	commit(t, store, "older", baseTime, []float32{3, 0}, []float32{1, 0})

	results, err := store.Search(ctx, []float32{1, 0}, nil, 10)
	require.NoError(t, err)

	var got []string
	for _, r := range results {
		got = append(got, r.ChunkID)
	}
	assert.Equal(t, []string{"older-c0", "older-c1", "newer-c0", "newer-c1"}, got)
}

func TestDocumentStore_Search_ScopedToDocuments(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	commit(t, store, "doc-1", baseTime, []float32{1, 0})
	commit(t, store, "doc-2", baseTime, []float32{1, 0})
	commit(t, store, "doc-3", baseTime, []float32{1, 0})

	results, err := store.Search(ctx, []float32{1, 0}, []string{"doc-3", "doc-1", "missing"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, []string{"doc-1", "doc-3"}, r.DocumentID)
	}

	results, err = store.Search(ctx, []float32{1, 0}, []string{"missing"}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDocumentStore_Search_ReadAfterWrite(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	vectors := [][]float32{{1, 2, 3}, {-1, 0, 4}, {0.5, 0.5, 0}}
	commit(t, store, "doc-1", baseTime, vectors...)
	commit(t, store, "doc-2", baseTime, []float32{3, 2, 1})

	results, err := store.Search(ctx, vectors[1], []string{"doc-1"}, len(vectors))
	require.NoError(t, err)
	assert.Len(t, results, len(vectors))
	assert.Equal(t, "doc-1-c1", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestDocumentStore_Search_Deterministic(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		commit(t, store, fmt.Sprintf("doc-%02d", i), baseTime.Add(time.Duration(i%3)*time.Minute),
			[]float32{float32(i % 4), 1}, []float32{1, float32(i % 5)})
	}

	first, err := store.Search(ctx, []float32{1, 1}, nil, 15)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := store.Search(ctx, []float32{1, 1}, nil, 15)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDocumentStore_Sample_RoundRobin(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	commit(t, store, "b", baseTime.Add(time.Minute), []float32{1}, []float32{1})
	commit(t, store, "a", baseTime, []float32{1}, []float32{1}, []float32{1})

	results, err := store.Sample(ctx, nil, 4)
	require.NoError(t, err)

	var got []string
	for _, r := range results {
		got = append(got, r.ChunkID)
	}
	assert.Equal(t, []string{"a-c0", "b-c0", "a-c1", "b-c1"}, got)

	results, err = store.Sample(ctx, nil, 10)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, "a-c2", results[4].ChunkID)

	results, err = store.Sample(ctx, []string{"b"}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = store.Sample(ctx, nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDocumentStore_ReturnsCopies(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	commit(t, store, "doc-1", baseTime, []float32{1, 0})

	doc, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	doc.ChunkIDs[0] = "tampered"

	chunks, err := store.Chunks(ctx, "doc-1")
	require.NoError(t, err)
	chunks[0].Embedding[0] = 42

	doc, _ = store.Get(ctx, "doc-1")
	assert.Equal(t, "doc-1-c0", doc.ChunkIDs[0])
	chunks, _ = store.Chunks(ctx, "doc-1")
	assert.Equal(t, float32(1), chunks[0].Embedding[0])
}

func TestDocumentStore_Concurrency(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			doc, chunks := buildDoc(fmt.Sprintf("doc-%d", i), baseTime, []float32{1, float32(i)}, []float32{float32(i), 1})
			assert.NoError(t, store.Commit(ctx, doc, chunks))
		}(i)
		go func() {
			defer wg.Done()
			results, err := store.Search(ctx, []float32{1, 1}, nil, 5)
			assert.NoError(t, err)
			for _, r := range results {
				// A document is visible with all of its chunks or not at all.
				chunks, err := store.Chunks(ctx, r.DocumentID)
				if err == nil {
					assert.Len(t, chunks, 2)
				}
			}
		}()
	}
	wg.Wait()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Documents)
	assert.Equal(t, 100, stats.Chunks)
}
