// Package mcp provides an MCP (Model Context Protocol) server adapter for PrepPal.
// It lets AI assistants search, question and quiz a student's indexed study material.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
