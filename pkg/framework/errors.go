package framework

import (
	"fmt"
	"strings"
)

// AggregatedError collects failures from independent sources, like the
// controllers of a frame or the background runnables of a Runner, into
// a single error value.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ""
	case 1:
		return e.Errors[0].Error()
	}
	msg := make([]string, len(e.Errors))
	for n, err := range e.Errors {
		msg[n] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msg, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add adds errors to be aggregated. nil will be skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// AddNamed adds an error prefixed with the name of its source. nil will
// be skipped.
func (e *AggregatedError) AddNamed(name string, err error) *AggregatedError {
	if err != nil {
		e.Errors = append(e.Errors, fmt.Errorf("%s: %w", name, err))
	}
	return e
}

// Aggregate returns nil if no error happened, the sole error when only
// one was collected, and the aggregate otherwise.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}
