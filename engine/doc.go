// Package engine compiles stage handlers and routing logic into an
// executable research pipeline and drives the run loop: invoke the current
// stage, merge its partial update into the shared state with the
// field-specific reducers, ask the router for the next stage, repeat until
// terminal.
//
// Configuration problems (missing handlers, invalid iteration budget) fail
// the call itself at build/compile/run start. Domain-level failures never
// escape Run: they are absorbed into the returned state's status and error
// fields.
package engine
