package tools

import "fmt"

// ValidationError reports tool arguments that do not satisfy the tool schema.
type ValidationError struct {
	Tool string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
