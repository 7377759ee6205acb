package mda

import "errors"

var (
	// ErrDuplicateDiscipline is returned when two disciplines share a name
	ErrDuplicateDiscipline = errors.New("duplicate discipline")
	// ErrDuplicateOutput is returned when a variable is produced twice outside an aggregation point
	ErrDuplicateOutput = errors.New("duplicate output")
	// ErrMissingInput is returned when an input is neither produced nor supplied
	ErrMissingInput = errors.New("missing input")
	// ErrKindMismatch is returned when producer, consumer or initial value disagree on a variable's kind
	ErrKindMismatch = errors.New("kind mismatch")
	// ErrUndeclaredOutput is returned when a discipline returns a variable it did not declare
	ErrUndeclaredOutput = errors.New("undeclared output")
	// ErrMissingOutput is returned when a discipline omits a declared output
	ErrMissingOutput = errors.New("missing output")
)
