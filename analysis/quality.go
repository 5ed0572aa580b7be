package analysis

import (
	"strings"

	"github.com/hupe1980/researchmesh/core"
)

// QualityAssessment is the result of scoring gathered material.
type QualityAssessment struct {
	Score   float64  `json:"score"` // in [0, 1]
	Factors []string `json:"factors"`
}

// AssessQuality scores a GatherOutput between 0 and 1 based on source count,
// content volume, retrieval relevance, source diversity and recency. Each
// contributing factor is named so the analyst can surface it.
func (a *TextAnalyzer) AssessQuality(g *core.GatherOutput) QualityAssessment {
	if g == nil || g.SourceCount() == 0 {
		return QualityAssessment{Score: 0, Factors: []string{"no sources retrieved"}}
	}

	var score float64
	var factors []string

	switch n := g.SourceCount(); {
	case n >= 5:
		score += 0.25
		factors = append(factors, "broad source base")
	case n >= 3:
		score += 0.15
		factors = append(factors, "adequate source count")
	default:
		score += 0.05
		factors = append(factors, "few sources")
	}

	words := a.WordCount(g.RawContent)
	switch {
	case words >= 500:
		score += 0.25
		factors = append(factors, "substantial content volume")
	case words >= 150:
		score += 0.15
		factors = append(factors, "moderate content volume")
	default:
		score += 0.05
		factors = append(factors, "thin content")
	}

	var relevanceSum float64
	for _, s := range g.Sources {
		relevanceSum += s.Score
	}
	if avg := relevanceSum / float64(g.SourceCount()); avg >= 0.5 {
		score += 0.2
		factors = append(factors, "high retrieval relevance")
	} else if avg >= 0.25 {
		score += 0.1
		factors = append(factors, "moderate retrieval relevance")
	}

	if domains := distinctDomains(g.Sources); domains >= 3 {
		score += 0.15
		factors = append(factors, "diverse source domains")
	} else if domains >= 2 {
		score += 0.1
		factors = append(factors, "some domain diversity")
	}

	dated := 0
	for _, s := range g.Sources {
		if s.PublishedDate != "" {
			dated++
		}
	}
	if dated > 0 {
		score += 0.15
		factors = append(factors, "dated sources present")
	}

	if score > 1 {
		score = 1
	}
	return QualityAssessment{Score: round3(score), Factors: factors}
}

func distinctDomains(sources []core.Source) int {
	seen := map[string]struct{}{}
	for _, s := range sources {
		m := domainRe.FindStringSubmatch(s.URL)
		if len(m) != 2 {
			continue
		}
		seen[strings.TrimPrefix(m[1], "www.")] = struct{}{}
	}
	return len(seen)
}
