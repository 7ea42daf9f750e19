package backend

import "fmt"

// LockError is returned when the persist lock could not be acquired before
// the caller's context ended. The write was never started.
type LockError struct {
	Err error
}

// Error implements the error interface.
func (e LockError) Error() string {
	return fmt.Sprintf("persist lock not acquired: %v", e.Err)
}

// Unwrap exposes the context error.
func (e LockError) Unwrap() error { return e.Err }

// FileError attributes a failure within a persist batch to a single file.
type FileError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying failure.
func (e FileError) Unwrap() error { return e.Err }

// BatchError reports the probe failures that stopped a persist batch. It is
// always produced before anything is written: the batch commits atomically or
// not at all, so a BatchError never leaves a partial commit behind.
type BatchError struct {
	Failures []FileError
}

// Error implements the error interface.
func (e BatchError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("1 file failed before commit: %v", e.Failures[0])
	}
	return fmt.Sprintf("%d files failed before commit, first: %v", len(e.Failures), e.Failures[0])
}

// Unwrap exposes the per-file failures to errors.Is and errors.As.
func (e BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// UnsupportedError marks capability-surface operations vellum deliberately
// does not provide.
type UnsupportedError struct {
	Op string
}

// Error implements the error interface.
func (e UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported: vellum does not implement an editorial workflow", e.Op)
}
