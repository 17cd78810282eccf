package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingInput matches every *MissingInputError with errors.Is.
var ErrMissingInput = errors.New("input file not found")

// MissingInputError is returned when a stage's input artifact does not exist.
type MissingInputError struct {
	Stage string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: input file not found: %s", e.Stage, e.Path)
}

// Is reports whether target is ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// UnknownStepError is returned when a step name is not in the pipeline.
type UnknownStepError struct {
	Name      string
	Available []string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ParseFallbackWarning is the message logged each time the Loader abandons a
// candidate dialect and moves on to the next one.
const ParseFallbackWarning = "parse failed, trying next dialect"

// errSingleColumn rejects a non-final candidate whose header did not split.
var errSingleColumn = errors.New("header parsed into a single column")
