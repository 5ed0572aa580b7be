package collab

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/search"
)

// Searcher is the retrieval dependency of the Researcher. *search.Client
// satisfies it; tests substitute a stub.
type Searcher interface {
	Search(ctx context.Context, query string) (*search.Response, error)
}

// ResearcherOptions configures a Researcher.
type ResearcherOptions struct {
	// Logger used for retrieval diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Researcher gathers raw source material for a topic through a search API.
type Researcher struct {
	searcher Searcher
	opts     ResearcherOptions
}

// NewResearcher creates a Researcher on top of a search backend.
func NewResearcher(searcher Searcher, optFns ...func(o *ResearcherOptions)) *Researcher {
	opts := ResearcherOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Researcher{searcher: searcher, opts: opts}
}

// Gather runs a search for the topic and packages the hits as a GatherOutput.
// An empty result set is an error; downstream stages need material to work on.
func (r *Researcher) Gather(ctx context.Context, topic string) (*core.GatherOutput, error) {
	resp, err := r.searcher.Search(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("search %q: no results", topic)
	}

	out := &core.GatherOutput{
		Topic:     topic,
		Notes:     resp.Answer,
		FetchedAt: time.Now().UTC(),
	}
	var raw strings.Builder
	for _, res := range resp.Results {
		out.Sources = append(out.Sources, core.Source{
			Title:         res.Title,
			URL:           res.URL,
			Content:       res.Content,
			Score:         res.Score,
			PublishedDate: res.PublishedDate,
		})
		raw.WriteString(res.Content)
		raw.WriteString("\n\n")
	}
	out.RawContent = strings.TrimSpace(raw.String())

	r.opts.Logger.Info("research complete", "topic", topic, "sources", out.SourceCount())
	return out, nil
}
