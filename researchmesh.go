// Package researchmesh provides a high-level façade over the stage registry
// and the workflow engine for running research pipelines end to end. Most
// applications interact with this package by:
//  1. Creating a ResearchMesh via New() (optionally overriding the model,
//     search backend, checkpoint store or logger)
//  2. Calling Research() with a query
//
// The façade delegates orchestration to engine.Executable while keeping
// setup ergonomics concise. Defaults come from config.Default(); production
// deployments typically load a config file and supply a structured logger.
package researchmesh

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/researchmesh/checkpoint"
	"github.com/hupe1980/researchmesh/collab"
	"github.com/hupe1980/researchmesh/config"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/engine"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/model/anthropic"
	"github.com/hupe1980/researchmesh/model/openai"
	"github.com/hupe1980/researchmesh/search"
	"github.com/hupe1980/researchmesh/stage"
)

// Options configures the ResearchMesh instance.
type Options struct {
	// Config supplies provider selection, credentials and run defaults.
	// Defaults to config.Default().
	Config *config.Config

	// Model overrides the model built from Config. Useful for tests and for
	// backends this package has no adapter for.
	Model model.Model

	// Searcher overrides the search client built from Config.
	Searcher collab.Searcher

	// Checkpoints receives state snapshots after every stage. Defaults to an
	// in-memory store.
	Checkpoints checkpoint.Store

	// Logger defaults to a NoOp logger.
	Logger logging.Logger
}

// ResearchMesh is the high-level façade aggregating the registry, the
// engine wiring and the checkpoint store.
type ResearchMesh struct {
	opts        Options
	registry    *stage.Registry
	checkpoints checkpoint.Store
}

// New creates a ResearchMesh with optional overrides. Handler construction
// is lazy: credentials are only touched when the first run resolves the
// registry, so New never fails on missing keys for overridden components.
func New(optFns ...func(o *Options)) (*ResearchMesh, error) {
	opts := Options{
		Config:      config.Default(),
		Checkpoints: checkpoint.NewInMemoryStore(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	m := &ResearchMesh{opts: opts, checkpoints: opts.Checkpoints}
	m.registry = stage.NewRegistry(func() (map[core.Stage]stage.Handler, error) {
		return buildHandlers(opts)
	})
	return m, nil
}

// Research runs the full pipeline for the query using the configured
// iteration budget and returns the final state. Domain failures are reported
// through the state; the returned error covers configuration problems only.
func (m *ResearchMesh) Research(ctx context.Context, query string) (*core.State, error) {
	return m.ResearchWithIterations(ctx, query, m.opts.Config.MaxIterations)
}

// ResearchWithIterations runs the pipeline with an explicit revision budget.
// The pipeline is compiled per call; the registry caches constructed handlers
// so repeated runs only pay for a handler-map copy, while a Reset between
// runs still picks up fresh credentials.
func (m *ResearchMesh) ResearchWithIterations(ctx context.Context, query string, maxIterations int) (*core.State, error) {
	x, err := engine.New(m.registry, func(o *engine.Options) {
		o.Logger = m.opts.Logger
		o.Checkpoints = m.checkpoints
	}).Compile()
	if err != nil {
		return nil, err
	}
	return x.Run(ctx, query, maxIterations)
}

// Registry exposes the underlying stage registry, mainly so callers can
// Reset it after rotating credentials.
func (m *ResearchMesh) Registry() *stage.Registry { return m.registry }

// Checkpoints exposes the checkpoint store for run inspection.
func (m *ResearchMesh) Checkpoints() checkpoint.Store { return m.checkpoints }

// buildHandlers assembles the production collaborators and wraps them in the
// five stage handlers.
func buildHandlers(opts Options) (map[core.Stage]stage.Handler, error) {
	cfg := opts.Config

	m := opts.Model
	if m == nil {
		var err error
		if m, err = buildModel(cfg); err != nil {
			return nil, err
		}
	}

	searcher := opts.Searcher
	if searcher == nil {
		if cfg.SearchAPIKey == "" {
			return nil, fmt.Errorf("no search API key configured and no searcher override provided")
		}
		searcher = search.NewClient(cfg.SearchAPIKey, func(o *search.Options) {
			if cfg.SearchBaseURL != "" {
				o.BaseURL = cfg.SearchBaseURL
			}
		})
	}

	logger := opts.Logger
	withLogger := func(o *stage.HandlerOptions) { o.Logger = logger }

	researcher := collab.NewResearcher(searcher, func(o *collab.ResearcherOptions) { o.Logger = logger })
	analyst := collab.NewAnalyst(m, func(o *collab.AnalystOptions) { o.Logger = logger })
	reviewer := collab.NewReviewer(m, func(o *collab.ReviewerOptions) {
		o.Logger = logger
		if cfg.ApprovalThreshold > 0 {
			o.ApprovalThreshold = cfg.ApprovalThreshold
		}
	})
	writer := collab.NewWriter(m, func(o *collab.WriterOptions) { o.Logger = logger })

	return map[core.Stage]stage.Handler{
		core.StageDispatcher: stage.NewDispatcherHandler(withLogger),
		core.StageGather:     stage.NewGatherHandler(researcher, withLogger),
		core.StageAnalyze:    stage.NewAnalyzeHandler(analyst, withLogger),
		core.StageReview:     stage.NewReviewHandler(reviewer, withLogger),
		core.StageCompose:    stage.NewComposeHandler(writer, withLogger),
	}, nil
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	case config.ProviderOpenAI:
		client := openaisdk.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case config.ProviderMock:
		return model.NewMockModel("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
