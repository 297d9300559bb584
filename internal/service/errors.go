package service

import "fmt"

// Typed domain errors. Handlers map these onto HTTP statuses; services never
// know about HTTP.

// NotFoundError — the referenced entity does not exist. → 404
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError — the input is malformed or out of range. → 422
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError — the write collides with existing state (duplicate SKU,
// duplicate link, invoice already issued). → 409
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidOperationError — the request is well formed but the operation is not
// allowed in the current state (negative stock, self-link, bad status
// transition). → 400
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string { return e.Message }

// ExhaustedRetriesError — a bounded retry loop ran out of attempts
// (order number generation). → 503
type ExhaustedRetriesError struct {
	Operation string
	Attempts  int
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("%s: gave up after %d attempts", e.Operation, e.Attempts)
}
