package configsync

import "fmt"

// PathError reports a file that could not be read or rewritten during a
// synchronization run. Files already rewritten before the failure stay
// rewritten.
type PathError struct {
	// Op is "read" or "write"
	Op string

	// Path is the file that failed
	Path string

	Err error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
