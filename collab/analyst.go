package collab

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/researchmesh/analysis"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/model"
)

// AnalystOptions configures an Analyst.
type AnalystOptions struct {
	// Logger used for analysis diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Analyst distills gathered material into a structured analysis. It combines
// a language-model synthesis with deterministic heuristics: sentiment and
// quality always come from the local lexicons so revisions are comparable,
// and the heuristics stand in entirely when the model reply is unusable.
type Analyst struct {
	model    model.Model
	analyzer *analysis.TextAnalyzer
	opts     AnalystOptions
}

// NewAnalyst creates an Analyst backed by the given model.
func NewAnalyst(m model.Model, optFns ...func(o *AnalystOptions)) *Analyst {
	opts := AnalystOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Analyst{model: m, analyzer: analysis.NewTextAnalyzer(), opts: opts}
}

// Analyze implements the analyze collaborator contract.
func (a *Analyst) Analyze(ctx context.Context, gathered *core.GatherOutput, priorFeedback string) (*core.AnalyzeOutput, error) {
	if gathered == nil {
		return nil, fmt.Errorf("analyze: nothing gathered")
	}

	combined := a.analyzer.CombineContent(gathered)
	_, sentiment := a.analyzer.SentimentScore(combined)
	quality := a.analyzer.AssessQuality(gathered)

	out := &core.AnalyzeOutput{
		Topic:        gathered.Topic,
		Sentiment:    string(sentiment),
		QualityScore: quality.Score,
	}

	resp, err := a.model.Complete(ctx, model.Request{
		System: analystSystemPrompt,
		Prompt: a.analyzer.FormatForModel(gathered, priorFeedback),
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %q: %w", gathered.Topic, err)
	}

	if raw := extractJSON(resp.Text); raw != "" {
		out.Summary = strings.TrimSpace(gjson.Get(raw, "summary").String())
		for _, kp := range gjson.Get(raw, "key_points").Array() {
			point := strings.TrimSpace(kp.Get("point").String())
			if point == "" {
				continue
			}
			out.KeyPoints = append(out.KeyPoints, core.KeyPoint{
				Point:      point,
				Confidence: parseConfidence(kp.Get("confidence").String()),
			})
		}
		if s := gjson.Get(raw, "sentiment").String(); s != "" && s != string(sentiment) {
			a.opts.Logger.Debug("sentiment disagreement", "model", s, "lexicon", sentiment)
		}
	}

	// Heuristic fallback when the model reply carried no usable structure.
	if out.Summary == "" {
		out.Summary = a.analyzer.Truncate(strings.TrimSpace(resp.Text), 600)
	}
	if len(out.KeyPoints) == 0 {
		for _, topic := range a.analyzer.IdentifyTopics(combined, 5) {
			out.KeyPoints = append(out.KeyPoints, core.KeyPoint{
				Point:      fmt.Sprintf("Recurring theme in the material: %s", topic),
				Confidence: core.ConfidenceLow,
			})
		}
		if figures := a.analyzer.ExtractNumbers(combined, 3); len(figures) > 0 {
			out.KeyPoints = append(out.KeyPoints, core.KeyPoint{
				Point:      fmt.Sprintf("Notable figures in the material: %s", strings.Join(figures, ", ")),
				Confidence: core.ConfidenceLow,
			})
		}
	}

	a.opts.Logger.Info("analysis complete",
		"topic", out.Topic,
		"key_points", len(out.KeyPoints),
		"quality_score", out.QualityScore,
		"revision", priorFeedback != "",
	)
	return out, nil
}

func parseConfidence(s string) core.Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return core.ConfidenceHigh
	case "low":
		return core.ConfidenceLow
	default:
		return core.ConfidenceMedium
	}
}
