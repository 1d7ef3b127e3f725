// Package boterrors implements the error taxonomy of §7: categorized,
// wrapped errors distinguishing recoverable faults (swallowed at the
// component that detects them, with a structured log entry) from
// invariant breaches (propagated unmodified to the driver). Adapted
// from the teacher's internal/errors/bot_errors.go category/component/
// operation shape, narrowed to the categories the engine actually
// raises.
package boterrors

import "fmt"

// Category distinguishes how a caller should react to an error.
type Category string

const (
	// CategoryInputFault covers a malformed or non-monotonic bar, or a
	// non-finite indicator input. The bar is dropped; state is retained.
	CategoryInputFault Category = "INPUT_FAULT"

	// CategoryPolicyBoundary covers an intent rejected at a policy
	// boundary (e.g. notional below the exchange minimum). Non-fatal.
	CategoryPolicyBoundary Category = "POLICY_BOUNDARY"

	// CategoryCollaboratorRejection covers the execution layer
	// reporting an order REJECTED. Non-fatal.
	CategoryCollaboratorRejection Category = "COLLABORATOR_REJECTION"

	// CategoryInvariantBreach covers a duplicate order id, an equity
	// inconsistency after a fill, or an undefined gate classification.
	// Fatal: the engine must stop processing further bars.
	CategoryInvariantBreach Category = "INVARIANT_BREACH"
)

// EngineError is a categorized error carrying the component and
// operation that raised it, per §7's propagation rule.
type EngineError struct {
	Category   Category
	Component  string
	Operation  string
	Message    string
	Underlying error
}

func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Component, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Component, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Fatal reports whether this error must propagate unmodified to the
// driver rather than being swallowed at the detecting component.
func (e *EngineError) Fatal() bool {
	return e.Category == CategoryInvariantBreach
}

// New creates a categorized error with no underlying cause.
func New(category Category, component, operation, message string) *EngineError {
	return &EngineError{Category: category, Component: component, Operation: operation, Message: message}
}

// Wrap attaches category/component/operation context to an existing
// error. Returns nil if err is nil.
func Wrap(err error, category Category, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{Category: category, Component: component, Operation: operation, Message: "operation failed", Underlying: err}
}
