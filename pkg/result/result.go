// Package result implements the error-propagation policy shared by every
// component: no component throws across its boundary, each returns a bundle
// of warnings and errors alongside its value.
package result

// Result bundles a component's output with accumulated warnings and errors,
// per the no-throw-across-boundaries propagation policy. A non-empty Errors
// list means the operation failed; Warnings never affect success.
type Result[T any] struct {
	Success  bool
	Warnings []string
	Errors   []string
	Value    T
}

// Ok wraps a value in a successful Result with no diagnostics.
func Ok[T any](value T) Result[T] {
	return Result[T]{Success: true, Value: value}
}

// Fail produces a failed Result carrying a single error message.
func Fail[T any](err string) Result[T] {
	return Result[T]{Success: false, Errors: []string{err}}
}

// Warn attaches a warning to an otherwise successful Result.
func (r Result[T]) Warn(msg string) Result[T] {
	r.Warnings = append(r.Warnings, msg)
	return r
}

// WithError marks the Result as failed and appends err's message.
func (r Result[T]) WithError(err error) Result[T] {
	r.Success = false
	r.Errors = append(r.Errors, err.Error())
	return r
}

// Merge folds other's warnings and errors into r, without touching r.Value.
// Used when a component aggregates sub-results (e.g. one per package) into
// a single top-level Result.
func Merge[T, U any](r Result[T], other Result[U]) Result[T] {
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Errors = append(r.Errors, other.Errors...)
	if !other.Success {
		r.Success = false
	}
	return r
}
