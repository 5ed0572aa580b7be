// Package analysis provides text processing heuristics used by the analyze
// collaborator: cleaning, keyword extraction, lexicon sentiment scoring and
// source-quality assessment. All heuristics are deterministic and
// model-free, so they are cheap to run before any language-model call.
package analysis
