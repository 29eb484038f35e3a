package structure

import (
	"errors"
	"fmt"
)

// ErrStructuring is the class of failures the caller recovers from by
// emitting the function with BuildNaive instead.
var ErrStructuring = errors.New("structuring failed")

// ErrComplexControlFlow is returned when a node assumed to belong to an
// && / || chain is not a conditional node.
var ErrComplexControlFlow = fmt.Errorf("%w: complex control flow; node assumed to be part of &&/|| wasn't. "+
	"Run with --no-andor to disable detection of &&/|| and try again", ErrStructuring)

// ErrInvariant matches every *InvariantError
var ErrInvariant = errors.New("structuring invariant violated")

// InvariantError reports a malformed graph. It is never recovered from.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return ErrInvariant.Error() + ": " + e.Msg
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}
