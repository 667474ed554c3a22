package domain

import "fmt"

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnsupportedPlatform = "UNSUPPORTED_PLATFORM"
)

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewUnsupportedPlatformError creates an error for an unrecognized webhook
// platform tag.
func NewUnsupportedPlatformError(platform string) error {
	return &DomainError{
		Code:    ErrCodeUnsupportedPlatform,
		Message: fmt.Sprintf("unsupported platform: %s", platform),
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeNotFound
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeValidation
	}
	return false
}

// IsUnsupportedPlatform checks if the error is an unsupported platform error
func IsUnsupportedPlatform(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeUnsupportedPlatform
	}
	return false
}
