package ecs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// Reference errors

	ErrNotImported   = errors.New("reference not imported")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrNotGlobal     = errors.New("component is not global")

	// Registration errors

	ErrUnsatisfiableOrder = errors.New("impossible to satisfy before and after requirements of the system")
	ErrInvalidQuery       = errors.New("invalid query")

	// Composition errors

	ErrInvalidComposition = errors.New("invalid composition")
	ErrImportRoot         = errors.New("cannot import a root into another namespace, must use modules")
	ErrImportSelf         = errors.New("cannot import a namespace into itself")
	ErrDependencyCycle    = errors.New("namespace dependencies form a cycle")
	ErrGlobalTrigger      = errors.New("cannot attach global trigger to non-global component")
)

// RefError reports a handle that cannot be resolved in a namespace because
// the namespace that defined it was never imported there.
type RefError struct {
	Kind      Kind
	Name      string
	ID        ID
	Origin    uuid.UUID
	Namespace string
}

func (e *RefError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.ID)
	}
	return fmt.Sprintf("attempted to reference an unimported %s %s (from namespace %s) within namespace %q",
		e.Kind, name, e.Origin, e.Namespace)
}

func (e *RefError) Unwrap() error { return ErrNotImported }

func compositionError(reason error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidComposition, reason, fmt.Sprintf(format, args...))
}
