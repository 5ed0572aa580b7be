package core

import (
	"fmt"
	"strings"
	"time"
)

// Source is one retrieved document reference inside a GatherOutput.
type Source struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// GatherOutput is the schema written exactly once by the Gather stage.
type GatherOutput struct {
	Topic      string    `json:"topic"`
	Sources    []Source  `json:"sources"`
	RawContent string    `json:"raw_content"`
	Notes      string    `json:"notes,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// SourceCount returns the number of retrieved sources.
func (g *GatherOutput) SourceCount() int { return len(g.Sources) }

// Confidence grades how well a key point is supported by the sources.
type Confidence string

const (
	// ConfidenceHigh marks points corroborated by multiple sources.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium marks points with partial support.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow marks speculative or weakly sourced points.
	ConfidenceLow Confidence = "low"
)

// KeyPoint is one finding inside an AnalyzeOutput.
type KeyPoint struct {
	Point             string     `json:"point"`
	Confidence        Confidence `json:"confidence"`
	SupportingSources []string   `json:"supporting_sources,omitempty"`
}

// AnalyzeOutput is the schema written by the Analyze stage. It may be
// overwritten on a revision pass; no other stage mutates it.
type AnalyzeOutput struct {
	Topic        string     `json:"topic"`
	Summary      string     `json:"summary"`
	KeyPoints    []KeyPoint `json:"key_points"`
	Sentiment    string     `json:"sentiment"`
	QualityScore float64    `json:"quality_score"` // in [0, 1]
	Revision     int        `json:"revision"`      // 0 for the initial pass
}

// ReviewOutput is the schema written by the Review stage.
type ReviewOutput struct {
	Approved        bool     `json:"approved"`
	QualityScore    float64  `json:"quality_score"` // in [0, 1]
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	MissingElements []string `json:"missing_elements,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// Feedback flattens the reviewer's objections into a single block of text
// carried forward as additional context for the next Analyze invocation.
// It returns "" when there is nothing actionable.
func (r *ReviewOutput) Feedback() string {
	var b strings.Builder
	writeList := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(header)
		b.WriteString(":\n")
		for _, item := range items {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	writeList("Weaknesses", r.Weaknesses)
	writeList("Missing elements", r.MissingElements)
	writeList("Suggestions", r.Suggestions)
	return strings.TrimRight(b.String(), "\n")
}

// Section is one titled body block of the final report.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ComposeOutput is the final report schema written by the Compose stage.
type ComposeOutput struct {
	Title            string    `json:"title"`
	Topic            string    `json:"topic"`
	ExecutiveSummary string    `json:"executive_summary"`
	Sections         []Section `json:"sections"`
	KeyTakeaways     []string  `json:"key_takeaways,omitempty"`
	Recommendations  []string  `json:"recommendations,omitempty"`
	Sources          []string  `json:"sources,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Markdown serializes the report as a flat text document. The layout is
// stable so callers can persist or diff rendered reports.
func (c *ComposeOutput) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	if c.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n\n", c.Topic)
	}
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(c.ExecutiveSummary)
	b.WriteString("\n")
	for _, s := range c.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.Title, s.Content)
	}
	if len(c.KeyTakeaways) > 0 {
		b.WriteString("\n## Key Takeaways\n\n")
		for _, t := range c.KeyTakeaways {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	if len(c.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for i, r := range c.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
	}
	if len(c.Sources) > 0 {
		b.WriteString("\n## Sources\n\n")
		for _, src := range c.Sources {
			fmt.Fprintf(&b, "- %s\n", src)
		}
	}
	return b.String()
}
