// Package services implements the driving port interfaces.
// Services contain the core business logic: the tool registry, the
// bounded tool-augmented dialogue orchestrator, session memory and the
// RAG facade. They orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO dependencies.
package services
