// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VectorStore: Two-collection semantic index over the course corpus
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Tool-capable chat completion backend
//   - TranscriptParser: Parses raw transcript files into courses and chunks
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
