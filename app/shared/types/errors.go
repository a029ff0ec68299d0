// Package types holds the domain error taxonomy shared by every module.
// Services return these from their failure paths; the HTTP layer maps each
// to a status code.
package types

// ValidationError reports invalid caller input. Maps to 400.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(message string) ValidationError {
	return ValidationError{Message: message}
}

// AuthorizationError reports a caller acting outside their rights. Maps to 403.
type AuthorizationError struct {
	Message string
}

func (e AuthorizationError) Error() string { return e.Message }

// NewAuthorizationError builds an AuthorizationError with the given message.
func NewAuthorizationError(message string) AuthorizationError {
	return AuthorizationError{Message: message}
}

// NotFoundError reports a missing or inaccessible entity. Maps to 404.
type NotFoundError struct {
	Message string
}

func (e NotFoundError) Error() string { return e.Message }

// NewNotFoundError builds a NotFoundError with the given message.
func NewNotFoundError(message string) NotFoundError {
	return NotFoundError{Message: message}
}

// ConflictError reports a request that contradicts current state. Maps to 409.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string { return e.Message }

// NewConflictError builds a ConflictError with the given message.
func NewConflictError(message string) ConflictError {
	return ConflictError{Message: message}
}
