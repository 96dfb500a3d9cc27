// Package html provides a Normaliser implementation for HTML documents.
// It extracts readable text from saved web pages and lecture notes, dropping
// scripts, styles and markup and decoding entities.
package html
