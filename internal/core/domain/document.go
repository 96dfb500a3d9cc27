package domain

import "time"

// DefaultSubject is displayed for documents ingested without a subject.
const DefaultSubject = "General"

// Document represents an ingested study document.
// A document exclusively owns its chunks; deleting it removes them all.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"doc_id" yaml:"doc_id"`

	// Filename is the name the document was ingested under.
	Filename string `json:"filename" yaml:"filename"`

	// Subject optionally groups documents (empty means none).
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`

	// UploadedAt is when ingestion committed the document.
	UploadedAt time.Time `json:"upload_time" yaml:"upload_time"`

	// ChunkIDs lists owned chunks in document order.
	ChunkIDs []string `json:"chunk_ids" yaml:"chunk_ids"`
}

// ChunkCount returns the number of chunks owned by the document.
func (d Document) ChunkCount() int {
	return len(d.ChunkIDs)
}

// DisplaySubject returns the subject, or DefaultSubject when unset.
func (d Document) DisplaySubject() string {
	if d.Subject == "" {
		return DefaultSubject
	}
	return d.Subject
}

// Chunk represents a searchable unit within a document.
// Chunks are immutable once committed.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document.
	Index int

	// Text is the text content of this chunk.
	Text string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// IngestRequest is raw extracted text awaiting chunking and indexing.
type IngestRequest struct {
	Filename string
	Subject  string
	Text     string
}

// IngestResult reports a committed ingestion.
type IngestResult struct {
	DocumentID string `json:"doc_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"num_chunks"`
}

// IndexStats summarises the contents of a document store.
type IndexStats struct {
	Documents  int `json:"documents" yaml:"documents"`
	Chunks     int `json:"chunks" yaml:"chunks"`
	Dimensions int `json:"dimensions" yaml:"dimensions"`
}
