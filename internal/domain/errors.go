// Package domain defines the model graph, annotations, and errors of the modeler.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input, including malformed annotations.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NoDataMessage is the exact message carried by NoDataError.
const NoDataMessage = "No Data to Model"

// NoDataError is raised when the imported schema has no usable fields.
type NoDataError struct{}

func (e *NoDataError) Error() string { return NoDataMessage }

// MismatchKind classifies a ColumnMismatchError.
type MismatchKind string

// Column mismatch kinds.
const (
	MismatchMissingColumn MismatchKind = "MISSING_COLUMN"
	MismatchType          MismatchKind = "TYPE_MISMATCH"
)

// ColumnMismatchError reports a candidate schema that is incompatible with
// the columns an existing model depends on.
type ColumnMismatchError struct {
	Kind     MismatchKind
	Column   string
	Expected DataType // set for TYPE_MISMATCH
	Actual   DataType // set for TYPE_MISMATCH
}

func (e *ColumnMismatchError) Error() string {
	if e.Kind == MismatchType {
		return fmt.Sprintf("column %q type mismatch: expected %s, got %s", e.Column, e.Expected, e.Actual)
	}
	return fmt.Sprintf("column %q referenced by the existing model is missing", e.Column)
}

// RoleNotConfiguredError indicates a geo role absent from the GeoContext.
type RoleNotConfiguredError struct {
	Role string
}

func (e *RoleNotConfiguredError) Error() string {
	return fmt.Sprintf("geo role %q is not configured", e.Role)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrMissingColumn creates a MISSING_COLUMN mismatch.
func ErrMissingColumn(column string) *ColumnMismatchError {
	return &ColumnMismatchError{Kind: MismatchMissingColumn, Column: column}
}

// ErrTypeMismatch creates a TYPE_MISMATCH mismatch.
func ErrTypeMismatch(column string, expected, actual DataType) *ColumnMismatchError {
	return &ColumnMismatchError{Kind: MismatchType, Column: column, Expected: expected, Actual: actual}
}
