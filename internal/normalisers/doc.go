// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; Default wires the
// built-in plain text, Markdown, HTML and PDF normalisers.
package normalisers
