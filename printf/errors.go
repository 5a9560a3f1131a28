package printf

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidDirective indicates an unknown conversion or malformed directive.
	ErrInvalidDirective = errors.New("printf: invalid directive")

	// ErrMissingArgument indicates more directives than arguments.
	ErrMissingArgument = errors.New("printf: missing argument")

	// ErrBadArgument indicates an argument whose type does not fit its conversion.
	ErrBadArgument = errors.New("printf: bad argument")

	// ErrShortBuffer indicates a Sprintf destination too small for the output
	// and its terminator.
	ErrShortBuffer = errors.New("printf: destination too small")
)
