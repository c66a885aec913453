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
//   - Extractor: Reads a policy file into a Document
//   - Normaliser: Transforms raw bytes of one format into text
//   - NormaliserRegistry: Selects appropriate normaliser
//   - PostProcessor: Splits document text into chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, answers come
//     from the whole-document keyword heuristic.
//   - LLMService: Language model generation. Without it, answers come from
//     the keyword heuristic over retrieved passages.
//   - PromptStore: Customisable prompt templates. Without it, built-in
//     templates are used.
//   - AnswerJournal: History of answered questions.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
