package analysis

import (
	"fmt"
	"strings"

	"github.com/hupe1980/researchmesh/core"
)

// maxSourceExcerpt bounds how much of each source is carried into a prompt.
const maxSourceExcerpt = 1200

// CombineContent concatenates the source contents of a GatherOutput into a
// single block, each excerpt prefixed with its title and URL.
func (a *TextAnalyzer) CombineContent(g *core.GatherOutput) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	for i, s := range g.Sources {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, s.Title, s.URL)
		b.WriteString(a.Truncate(strings.TrimSpace(s.Content), maxSourceExcerpt))
	}
	if g.RawContent != "" && b.Len() == 0 {
		b.WriteString(a.Truncate(g.RawContent, maxSourceExcerpt*4))
	}
	return b.String()
}

// FormatForModel renders gathered material plus optional reviewer feedback
// into the user portion of an analysis prompt.
func (a *TextAnalyzer) FormatForModel(g *core.GatherOutput, priorFeedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", g.Topic)
	b.WriteString("Research material:\n\n")
	b.WriteString(a.CombineContent(g))
	if priorFeedback != "" {
		b.WriteString("\n\nReviewer feedback on the previous analysis, address every point:\n")
		b.WriteString(priorFeedback)
	}
	return b.String()
}
