// Package core provides the foundational domain types used by ResearchMesh.
// It defines the core abstractions for:
//
//   - Stages (the closed set of pipeline roles plus the terminal marker)
//   - State (the shared record threaded through every stage of a run)
//   - Updates (partial, merge-by-reducer state deltas produced by stages)
//   - Messages (append-only inter-stage communication records)
//   - Per-stage output schemas (gather, analyze, review, compose)
//
// The package intentionally keeps implementation concerns (routing, engine
// orchestration, concrete stage handlers, collaborator clients) out of scope,
// exposing small value types so the execution layers can be tested with
// literal states rather than live runs.
package core
