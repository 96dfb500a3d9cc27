// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never hold the document store's lock while calling embedding or
// LLM adapters; every store call is a single short operation.
package services
