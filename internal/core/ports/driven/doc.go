// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document metadata plus the vector index over chunk embeddings
//   - EmbeddingService: Turns chunk and query text into vectors
//   - Chunker: Splits extracted text into overlapping chunks
//   - QuizSynthesizer: Writes one quiz item from a cluster of grounding chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer synthesis. Without it, ask returns the retrieved context only.
//   - TopicBreakdown: Real subtopics for study plans. Without it, placeholders are used.
//   - HistoryStore: Chat history. Without it, exchanges are not recorded.
//   - PlanStore: Saved study plans. Without it, plans cannot be tracked.
//   - Connector: Watches a study folder for changes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
