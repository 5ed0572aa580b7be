package collab

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/model"
)

// DefaultApprovalThreshold is the minimum quality score a reviewed analysis
// needs for approval.
const DefaultApprovalThreshold = 0.7

// ReviewerOptions configures a Reviewer.
type ReviewerOptions struct {
	// ApprovalThreshold overrides the minimum quality score for approval.
	// Defaults to DefaultApprovalThreshold.
	ApprovalThreshold float64

	// Logger used for review diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Reviewer quality-gates an analysis through a language model. The model's
// verdict is advisory; the final approval decision is the threshold check on
// the quality score, so a generous model cannot wave a weak analysis through.
type Reviewer struct {
	model model.Model
	opts  ReviewerOptions
}

// NewReviewer creates a Reviewer backed by the given model.
func NewReviewer(m model.Model, optFns ...func(o *ReviewerOptions)) *Reviewer {
	opts := ReviewerOptions{
		ApprovalThreshold: DefaultApprovalThreshold,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Reviewer{model: m, opts: opts}
}

// Review implements the review collaborator contract.
func (r *Reviewer) Review(ctx context.Context, analysis *core.AnalyzeOutput) (*core.ReviewOutput, error) {
	if analysis == nil {
		return nil, fmt.Errorf("review: nothing to review")
	}

	encoded, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("review: encode analysis: %w", err)
	}

	resp, err := r.model.Complete(ctx, model.Request{
		System: reviewerSystemPrompt,
		Prompt: fmt.Sprintf("Analysis to evaluate:\n\n%s", encoded),
	})
	if err != nil {
		return nil, fmt.Errorf("review %q: %w", analysis.Topic, err)
	}

	out := &core.ReviewOutput{QualityScore: analysis.QualityScore}
	if raw := extractJSON(resp.Text); raw != "" {
		if score := gjson.Get(raw, "quality_score"); score.Exists() {
			out.QualityScore = clamp01(score.Float())
		}
		out.Strengths = stringSlice(gjson.Get(raw, "strengths"))
		out.Weaknesses = stringSlice(gjson.Get(raw, "weaknesses"))
		out.MissingElements = stringSlice(gjson.Get(raw, "missing_elements"))
		out.Suggestions = stringSlice(gjson.Get(raw, "suggestions"))
	}
	out.Approved = out.QualityScore >= r.opts.ApprovalThreshold

	r.opts.Logger.Info("review complete",
		"topic", analysis.Topic,
		"approved", out.Approved,
		"quality_score", out.QualityScore,
		"objections", len(out.Weaknesses)+len(out.MissingElements),
	)
	return out, nil
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
