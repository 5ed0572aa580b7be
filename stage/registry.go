package stage

import (
	"fmt"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// BuilderFunc constructs the full handler set for a run group, typically
// from a credential/config bundle. It is invoked at most once per registry
// lifetime (per Reset cycle), so expensive construction such as API clients
// happens once and is reused across runs.
type BuilderFunc func() (map[core.Stage]Handler, error)

// Registry is the caller-owned handle to the stage handler set. Handlers are
// constructed lazily on first use and dropped by Reset, so stale external
// client state never leaks across run groups using different credentials.
//
// Reset is a serialization point: it takes the same lock handler lookups
// take, so it must not race an in-flight run. All methods are safe for
// concurrent use.
type Registry struct {
	mu       sync.Mutex
	build    BuilderFunc
	handlers map[core.Stage]Handler
}

// NewRegistry creates a registry that builds its handlers on first use.
func NewRegistry(build BuilderFunc) *Registry {
	return &Registry{build: build}
}

// NewRegistryFromHandlers creates a pre-populated registry. Useful for tests
// and callers that construct handlers eagerly.
func NewRegistryFromHandlers(handlers ...Handler) *Registry {
	m := make(map[core.Stage]Handler, len(handlers))
	for _, h := range handlers {
		m[h.Stage()] = h
	}
	r := &Registry{handlers: m}
	r.build = func() (map[core.Stage]Handler, error) { return m, nil }
	return r
}

// Handler returns the handler bound to the stage, constructing the handler
// set first if needed.
func (r *Registry) Handler(s core.Stage) (Handler, error) {
	handlers, err := r.Handlers()
	if err != nil {
		return nil, err
	}
	h, ok := handlers[s]
	if !ok {
		return nil, fmt.Errorf("no handler registered for stage %s", s)
	}
	return h, nil
}

// Handlers returns the full handler map, constructing it on first use. The
// returned map is a copy; mutating it does not affect the registry.
func (r *Registry) Handlers() (map[core.Stage]Handler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		if r.build == nil {
			return nil, fmt.Errorf("registry has no builder and no handlers")
		}
		built, err := r.build()
		if err != nil {
			return nil, fmt.Errorf("failed to build stage handlers: %w", err)
		}
		r.handlers = built
	}
	out := make(map[core.Stage]Handler, len(r.handlers))
	for k, v := range r.handlers {
		out[k] = v
	}
	return out, nil
}

// Register binds or replaces a single handler. Registration after runs have
// started is safe but not recommended.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[core.Stage]Handler)
	}
	r.handlers[h.Stage()] = h
}

// Reset drops all constructed handlers. The next lookup rebuilds them via
// the builder, picking up fresh credentials or configuration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = nil
}
