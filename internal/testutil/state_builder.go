package testutil

import (
	"time"

	"github.com/hupe1980/researchmesh/core"
)

// StateBuilder provides a fluent helper for constructing workflow states in
// tests. Example:
//
//	st := NewStateBuilder().Query("quantum computing").Gathered(2).Analyzed().Build()
//
// Chain only the parts you need; sensible defaults are applied.
type StateBuilder struct {
	st *core.State
}

// NewStateBuilder creates a builder around a fresh state with query "test
// query" and a revision budget of 3.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{st: core.NewState("test query", 3)}
}

// Query sets the research query (chainable).
func (b *StateBuilder) Query(q string) *StateBuilder { b.st.Query = q; return b }

// MaxIterations sets the revision budget (chainable).
func (b *StateBuilder) MaxIterations(n int) *StateBuilder { b.st.MaxIterations = n; return b }

// Iteration sets the current revision count (chainable).
func (b *StateBuilder) Iteration(n int) *StateBuilder { b.st.IterationCount = n; return b }

// Dispatched records the stage the dispatcher last routed to (chainable).
func (b *StateBuilder) Dispatched(s core.Stage) *StateBuilder { b.st.NextStage = &s; return b }

// Status sets the workflow status (chainable).
func (b *StateBuilder) Status(s core.Status) *StateBuilder { b.st.Status = s; return b }

// Gathered attaches a gather output with n synthetic sources (chainable).
func (b *StateBuilder) Gathered(n int) *StateBuilder {
	out := &core.GatherOutput{
		Topic:     b.st.Query,
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for i := 0; i < n; i++ {
		out.Sources = append(out.Sources, core.Source{
			Title:   "Source",
			URL:     "https://example.com/article",
			Content: "Example article content with strong growth indicators.",
			Score:   0.8,
		})
		out.RawContent += "Example article content with strong growth indicators.\n"
	}
	b.st.GatherOutput = out
	return b
}

// Analyzed attaches a minimal analyze output (chainable).
func (b *StateBuilder) Analyzed() *StateBuilder {
	b.st.AnalyzeOutput = &core.AnalyzeOutput{
		Topic:   b.st.Query,
		Summary: "The material points to sustained growth.",
		KeyPoints: []core.KeyPoint{
			{Point: "Growth is accelerating", Confidence: core.ConfidenceHigh},
		},
		Sentiment:    "positive",
		QualityScore: 0.8,
		Revision:     b.st.IterationCount,
	}
	return b
}

// Reviewed attaches a review output with the given verdict (chainable).
func (b *StateBuilder) Reviewed(approved bool) *StateBuilder {
	out := &core.ReviewOutput{Approved: approved, QualityScore: 0.9}
	if !approved {
		out.QualityScore = 0.4
		out.Weaknesses = []string{"summary lacks depth"}
		out.Suggestions = []string{"cite the primary source"}
	}
	b.st.ReviewOutput = out
	return b
}

// Composed attaches a minimal report (chainable).
func (b *StateBuilder) Composed() *StateBuilder {
	b.st.ComposeOutput = &core.ComposeOutput{
		Title:            "Research Report: " + b.st.Query,
		Topic:            b.st.Query,
		ExecutiveSummary: "The material points to sustained growth.",
		GeneratedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	return b
}

// Failed marks the state as failed at the given stage (chainable).
func (b *StateBuilder) Failed(at core.Stage, msg string) *StateBuilder {
	b.st.Status = core.StatusFailed
	b.st.Error = msg
	b.st.ErrorStage = &at
	return b
}

// Build returns the assembled state.
func (b *StateBuilder) Build() *core.State { return b.st }
