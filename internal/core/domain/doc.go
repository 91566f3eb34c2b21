// Package domain defines the core business entities for coursechat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Course: A course with its ordered lessons
//   - CourseChunk: A searchable unit of transcript text
//   - SearchResults: The outcome of a content search
//   - Source: Provenance for a retrieved chunk
//   - Exchange: One query/answer pair in a session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
