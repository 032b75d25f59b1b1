package errors

import "fmt"

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field      string      // field that failed validation
	Value      interface{} // the value that failed validation
	Constraint string      // the validation constraint that failed
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, constraint string) *ValidationError {
	message := fmt.Sprintf("validation failed for field '%s': %s", field, constraint)

	return &ValidationError{
		BaseError:  New(ValidationErrorCode, message),
		Field:      field,
		Value:      value,
		Constraint: constraint,
	}
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError reports a malformed declaration document or expression
type SyntaxError struct {
	*BaseError
	Input string // text that failed to parse
}

// NewSyntaxError creates a syntax error for input at loc
func NewSyntaxError(input, message string, loc SourceLocation) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message).WithLocation(loc).WithContext("input", input),
		Input:     input,
	}
}

// WithCause adds an underlying error cause
func (e *SyntaxError) WithCause(cause error) *SyntaxError {
	e.BaseError.WithCause(cause)
	return e
}
