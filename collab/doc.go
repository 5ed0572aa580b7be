// Package collab contains the production collaborators behind the four
// worker stages: a researcher backed by a web search API, an analyst and a
// reviewer backed by a language model plus deterministic text heuristics,
// and a report writer. Each collaborator satisfies the corresponding
// interface in the stage package and degrades to heuristic output when a
// model reply cannot be parsed.
package collab
