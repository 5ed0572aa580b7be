package collab

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/model"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Logger used for composition diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Writer turns an approved analysis into the final report. When the model
// reply lacks structure it falls back to rendering the analysis directly, so
// a completed run always carries a report.
type Writer struct {
	model model.Model
	opts  WriterOptions
}

// NewWriter creates a Writer backed by the given model.
func NewWriter(m model.Model, optFns ...func(o *WriterOptions)) *Writer {
	opts := WriterOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Writer{model: m, opts: opts}
}

// Compose implements the compose collaborator contract.
func (w *Writer) Compose(ctx context.Context, analysis *core.AnalyzeOutput, review *core.ReviewOutput) (*core.ComposeOutput, error) {
	if analysis == nil {
		return nil, fmt.Errorf("compose: no analysis available")
	}

	resp, err := w.model.Complete(ctx, model.Request{
		System: writerSystemPrompt,
		Prompt: w.composePrompt(analysis, review),
	})
	if err != nil {
		return nil, fmt.Errorf("compose %q: %w", analysis.Topic, err)
	}

	out := &core.ComposeOutput{
		Topic:       analysis.Topic,
		GeneratedAt: time.Now().UTC(),
	}
	if raw := extractJSON(resp.Text); raw != "" {
		out.Title = strings.TrimSpace(gjson.Get(raw, "title").String())
		out.ExecutiveSummary = strings.TrimSpace(gjson.Get(raw, "executive_summary").String())
		for _, sec := range gjson.Get(raw, "sections").Array() {
			title := strings.TrimSpace(sec.Get("title").String())
			content := strings.TrimSpace(sec.Get("content").String())
			if title == "" || content == "" {
				continue
			}
			out.Sections = append(out.Sections, core.Section{Title: title, Content: content})
		}
		out.KeyTakeaways = stringSlice(gjson.Get(raw, "key_takeaways"))
		out.Recommendations = stringSlice(gjson.Get(raw, "recommendations"))
	}

	w.fillFromAnalysis(out, analysis)

	w.opts.Logger.Info("report composed",
		"topic", out.Topic,
		"sections", len(out.Sections),
		"takeaways", len(out.KeyTakeaways),
	)
	return out, nil
}

func (w *Writer) composePrompt(analysis *core.AnalyzeOutput, review *core.ReviewOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\nAnalysis summary:\n%s\n", analysis.Topic, analysis.Summary)
	if len(analysis.KeyPoints) > 0 {
		b.WriteString("\nKey points:\n")
		for _, kp := range analysis.KeyPoints {
			fmt.Fprintf(&b, "- %s (confidence: %s)\n", kp.Point, kp.Confidence)
		}
	}
	fmt.Fprintf(&b, "\nOverall sentiment: %s\n", analysis.Sentiment)
	if review != nil && len(review.Strengths) > 0 {
		b.WriteString("\nReviewer highlighted strengths:\n")
		for _, s := range review.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

// fillFromAnalysis backfills any report field the model left empty.
func (w *Writer) fillFromAnalysis(out *core.ComposeOutput, analysis *core.AnalyzeOutput) {
	if out.Title == "" {
		out.Title = fmt.Sprintf("Research Report: %s", analysis.Topic)
	}
	if out.ExecutiveSummary == "" {
		out.ExecutiveSummary = analysis.Summary
	}
	if len(out.Sections) == 0 && len(analysis.KeyPoints) > 0 {
		var body strings.Builder
		for _, kp := range analysis.KeyPoints {
			fmt.Fprintf(&body, "- %s\n", kp.Point)
		}
		out.Sections = append(out.Sections, core.Section{
			Title:   "Findings",
			Content: strings.TrimRight(body.String(), "\n"),
		})
	}
	if len(out.KeyTakeaways) == 0 {
		for _, kp := range analysis.KeyPoints {
			if kp.Confidence == core.ConfidenceHigh {
				out.KeyTakeaways = append(out.KeyTakeaways, kp.Point)
			}
		}
	}
}
