package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument represents opaque file bytes before text extraction.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Filename returns the base name of the URI.
func (r RawDocument) Filename() string {
	return filepath.Base(strings.TrimPrefix(r.URI, "file://"))
}

// Title derives a readable title from the filename: no extension, with
// underscores and dashes as spaces.
func (r RawDocument) Title() string {
	name := r.Filename()
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns the change name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return unknownDescription
	}
}

// RawDocumentChange represents a change event from a connector.
// Deleted files carry only the URI.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected file.
	Document RawDocument
}
