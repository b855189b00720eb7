// Package domain defines core types, interfaces, and errors for file ingestion.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., an ingestion already running for a dataset).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// SourceUnavailableError indicates the source file vanished or cannot be read
// by the storage engine.
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("source %q is unavailable", e.Path)
	}
	return fmt.Sprintf("source %q is unavailable: %v", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// EmptySchemaError indicates the schema probe returned no columns.
type EmptySchemaError struct {
	Path string
}

func (e *EmptySchemaError) Error() string {
	return fmt.Sprintf("source %q has no columns", e.Path)
}

// NamingConflictError indicates the storage engine rejected a table or
// sequence name because an object with that name already exists.
type NamingConflictError struct {
	Name string
	Err  error
}

func (e *NamingConflictError) Error() string {
	return fmt.Sprintf("storage object %q already exists: %v", e.Name, e.Err)
}

func (e *NamingConflictError) Unwrap() error { return e.Err }

// TransactionError wraps any other storage engine failure raised while a
// materialization transaction was open. Stage names the step that failed.
type TransactionError struct {
	Stage string
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

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
