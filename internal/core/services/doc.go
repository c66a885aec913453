// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer pipeline lives here: RetrievalIndex embeds and ranks chunks,
// AnswerSynthesizer asks the language model for a structured answer, and
// Orchestrator sequences both with the keyword heuristic as fallback.
//
// Services are pure Go with no CGO or external dependencies.
package services
