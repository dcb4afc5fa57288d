package assets

import (
	"fmt"
	"strings"
)

// NotFoundError indicates every candidate definition file for a robot
// failed to resolve. Tried carries the attempted locations.
type NotFoundError struct {
	Name  string
	Tried []string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("robot %q not found, tried: %s", e.Name, strings.Join(e.Tried, ", "))
}

// MissingDefinitionError indicates an uploaded file set contained no
// usable robot definition.
type MissingDefinitionError struct {
	Name string
}

// Error implements error.
func (e *MissingDefinitionError) Error() string {
	return fmt.Sprintf("upload %q has no robot definition", e.Name)
}

// NetworkError wraps a fetch failure with the attempted location.
type NetworkError struct {
	Location string
	Err      error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
