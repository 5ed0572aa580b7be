// Package stage provides the five stage handlers of the research pipeline
// (Dispatcher, Gather, Analyze, Review, Compose) plus the caller-owned
// Registry that constructs them lazily from a credential bundle and tears
// them down deterministically between runs.
//
// Every handler implements the uniform node contract: consume the shared
// state as a read-only view, produce a partial update containing only the
// fields the stage is authorized to write, never mutate in place. Worker
// handlers delegate the actual work to external collaborators behind narrow
// interfaces, so prompting, search and heuristics stay out of the execution
// engine's scope.
package stage
