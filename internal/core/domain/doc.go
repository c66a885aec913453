// Package domain defines the core business entities for policylens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Extracted text of one policy document
//   - Chunk: A bounded, overlapping segment of a document
//   - RetrievedPassage: A chunk scored against a question
//   - AnswerRecord: The structured answer produced by every tier
//   - RawDocument: Opaque bytes read from disk before extraction
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
