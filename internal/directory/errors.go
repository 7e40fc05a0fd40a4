package directory

import "fmt"

// DirectoryError is returned for any non-2xx directory response.
type DirectoryError struct {
	Directory string
	Method    string
	Status    int
	URL       string
	// Body is the response body. Empty when it could not be read.
	Body string
}

func (e *DirectoryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s failed: HTTP %d %s", e.Directory, e.Method, e.Status, e.URL)
	}
	return fmt.Sprintf("%s %s failed: HTTP %d %s. Body: %s", e.Directory, e.Method, e.Status, e.URL, e.Body)
}

// UnexpectedShapeError reports a successful response whose JSON does not have
// the shape the caller needs.
type UnexpectedShapeError struct {
	Expected string
	Err      error
}

func (e *UnexpectedShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response shape: expected %s: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("unexpected response shape: expected %s", e.Expected)
}

func (e *UnexpectedShapeError) Unwrap() error {
	return e.Err
}
