// Package migrations holds the schema for chat history and saved plans.
// Files are named NNN_name.up.sql and applied in order.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
