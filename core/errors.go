package core

import "errors"

// Sentinel errors for the fatal, never-retried failure classes. Callers use
// errors.Is to distinguish them from collaborator failures when inspecting a
// failed run.
var (
	// ErrPreconditionUnmet marks a stage entered before its upstream field
	// was populated.
	ErrPreconditionUnmet = errors.New("stage precondition unmet")

	// ErrContractViolation marks a stage that returned with neither its
	// expected output nor an error.
	ErrContractViolation = errors.New("stage contract violation")
)
