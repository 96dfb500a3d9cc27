package domain

import (
	"fmt"
	"strings"
)

// DefaultTopK is the number of chunks retrieved when callers do not say.
const DefaultTopK = 5

// QueryResult is a single ranked retrieval hit. It is produced fresh per query
// and never persisted.
type QueryResult struct {
	ChunkID    string  `json:"chunk_id" yaml:"chunk_id"`
	DocumentID string  `json:"document_id" yaml:"document_id"`
	Filename   string  `json:"filename" yaml:"filename"`
	ChunkIndex int     `json:"chunk_index" yaml:"chunk_index"`
	Score      float64 `json:"score" yaml:"score"`
	Text       string  `json:"text" yaml:"text"`
}

// Source is the citation form of a QueryResult returned alongside answers.
type Source struct {
	Filename   string  `json:"filename" yaml:"filename"`
	ChunkIndex int     `json:"chunk_index" yaml:"chunk_index"`
	Score      float64 `json:"relevance_score" yaml:"relevance_score"`
}

// SourceOf returns the citation for a retrieval hit.
func SourceOf(r QueryResult) Source {
	return Source{
		Filename:   r.Filename,
		ChunkIndex: r.ChunkIndex,
		Score:      r.Score,
	}
}

// FormatContext renders retrieval hits as a prompt context block, each hit
// headed by "[Source: <filename>, Chunk <index>]" and separated by a blank line.
func FormatContext(results []QueryResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source: %s, Chunk %d]\n%s", r.Filename, r.ChunkIndex, r.Text)
	}
	return b.String()
}
