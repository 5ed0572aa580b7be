package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/researchmesh/checkpoint"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/router"
	"github.com/hupe1980/researchmesh/stage"
)

// ErrConfiguration marks setup problems surfaced before any run starts:
// missing handler registrations, invalid iteration budgets. These are the
// only errors Run ever returns; everything else lands in the state.
var ErrConfiguration = errors.New("configuration error")

// requiredStages lists every router-reachable stage that must have a
// registered handler for the graph to compile.
var requiredStages = []core.Stage{
	core.StageDispatcher,
	core.StageGather,
	core.StageAnalyze,
	core.StageReview,
	core.StageCompose,
}

// Options configures a Builder using the functional options pattern.
type Options struct {
	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger

	// Checkpoints, when set, receives a snapshot of the shared state after
	// every merge, keyed by run ID. Nil disables checkpointing.
	Checkpoints checkpoint.Store

	// MaxSteps bounds total stage invocations per run as a defense against
	// routing bugs. Zero derives a budget from the run's iteration cap.
	MaxSteps int
}

// Builder wires a stage registry into an executable pipeline.
type Builder struct {
	registry *stage.Registry
	opts     Options
	handlers map[core.Stage]stage.Handler
}

// New creates a Builder over a caller-owned registry with optional overrides.
func New(registry *stage.Registry, optFns ...func(o *Options)) *Builder {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{registry: registry, opts: opts}
}

// Build resolves the handler bindings for all five stage identifiers from
// the registry. It fails fast if any required handler is missing, so broken
// wiring never reaches a run.
func (b *Builder) Build() error {
	handlers, err := b.registry.Handlers()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConfiguration, err)
	}
	for _, s := range requiredStages {
		h, ok := handlers[s]
		if !ok {
			return fmt.Errorf("%w: missing handler for stage %s", ErrConfiguration, s)
		}
		if h.Stage() != s {
			return fmt.Errorf("%w: handler for %s reports stage %s", ErrConfiguration, s, h.Stage())
		}
	}
	b.handlers = handlers
	return nil
}

// Compile validates the graph shape and returns an immutable, re-runnable
// executable. Build is invoked implicitly if it has not run yet.
func (b *Builder) Compile() (*Executable, error) {
	if b.handlers == nil {
		if err := b.Build(); err != nil {
			return nil, err
		}
	}
	// The handler map is copied so later registry mutation or reset cannot
	// change an already compiled executable.
	handlers := make(map[core.Stage]stage.Handler, len(b.handlers))
	for k, v := range b.handlers {
		handlers[k] = v
	}
	return &Executable{
		handlers:    handlers,
		logger:      b.opts.Logger,
		checkpoints: b.opts.Checkpoints,
		maxSteps:    b.opts.MaxSteps,
	}, nil
}

// Executable is a compiled pipeline. It is immutable and safe to run
// concurrently for independent queries; each Run call owns its state and
// shares only the read-mostly handler set.
type Executable struct {
	handlers    map[core.Stage]stage.Handler
	logger      logging.Logger
	checkpoints checkpoint.Store
	maxSteps    int
}

// Run executes one research query to completion and returns the final
// shared state. Stages execute strictly sequentially; each stage invocation
// may block on its collaborator for a long, variable duration, so callers
// wanting timeouts wrap ctx around the whole call.
//
// Run returns an error only for configuration problems. Domain failures are
// reported solely through the returned state's Status and Error fields.
func (x *Executable) Run(ctx context.Context, query string, maxIterations int) (*core.State, error) {
	if maxIterations < 1 {
		return nil, fmt.Errorf("%w: max iterations must be >= 1, got %d", ErrConfiguration, maxIterations)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrConfiguration)
	}

	st := core.NewState(query, maxIterations)
	logger := x.logger
	start := time.Now()

	// Every loop turn runs the dispatcher plus at most one worker, and the
	// revision rule bounds worker reruns, so this budget is generous; it
	// only trips on a routing bug.
	maxSteps := x.maxSteps
	if maxSteps == 0 {
		maxSteps = 4*maxIterations + 16
	}

	logger.Info("run started", "run_id", st.RunID, "query", query, "max_iterations", maxIterations)

	current := core.StageDispatcher
	steps := 0
	for current != core.StageTerminal {
		steps++
		if steps > maxSteps {
			st = core.Apply(st, core.FailureUpdate(current,
				fmt.Sprintf("step budget exceeded after %d stage invocations", steps-1)))
			break
		}

		if err := router.CanEnter(current, st); err != nil {
			st = core.Apply(st, core.FailureUpdate(current, err.Error()))
			break
		}

		// The engine owns the control pointer: each stage sees itself as
		// current and receives a private snapshot it cannot alias.
		snapshot := st.Clone()
		snapshot.CurrentStage = current

		upd := x.invoke(ctx, x.handlers[current], snapshot)
		st = core.Apply(snapshot, upd)

		if x.checkpoints != nil {
			if err := x.checkpoints.Save(st.RunID, st); err != nil {
				logger.Warn("checkpoint save failed", "run_id", st.RunID, "error", err)
			}
		}

		current = router.Next(current, st)
	}

	st = finalize(st)
	logger.Info("run finished",
		"run_id", st.RunID,
		"status", st.Status.String(),
		"iterations", st.IterationCount,
		"stages", steps,
		"duration", time.Since(start),
	)

	return st, nil
}

// invoke executes one stage handler against a state snapshot, converting
// returned errors and panics into the canonical fatal update. No failure
// ever propagates past the stage boundary.
func (x *Executable) invoke(ctx context.Context, h stage.Handler, st *core.State) (upd core.Update) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.Error("stage panicked", "stage", h.Stage().String(), "panic", r)
			upd = core.FailureUpdate(h.Stage(), fmt.Sprintf("stage %s panicked: %v", h.Stage(), r))
		}
	}()

	start := time.Now()
	u, err := h.Handle(ctx, st)
	if err != nil {
		x.logger.Error("stage failed", "stage", h.Stage().String(), "duration", time.Since(start), "error", err)
		return core.FailureUpdate(h.Stage(), err.Error())
	}
	x.logger.Debug("stage completed", "stage", h.Stage().String(), "duration", time.Since(start))
	return u
}

// finalize pins the terminal invariant: exactly one of Completed with a
// report, or Failed with an error. The state is immutable afterwards.
func finalize(st *core.State) *core.State {
	final := st.Clone()

	switch {
	case final.Failed():
		final.Status = core.StatusFailed
	case final.ComposeOutput != nil:
		final.Status = core.StatusCompleted
	default:
		// Terminal without report or error: the routing layer gave up in a
		// way no stage accounted for.
		final.Status = core.StatusFailed
		final.Error = "run terminated without report: " + core.ErrContractViolation.Error()
		es := final.CurrentStage
		final.ErrorStage = &es
	}

	now := time.Now().UTC()
	final.CompletedAt = &now
	return final
}
