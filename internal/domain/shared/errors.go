package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Unit lookup errors

type UnitNotFoundError struct {
	*DomainError
	UnitID UnitID
}

func NewUnitNotFoundError(id UnitID) *UnitNotFoundError {
	return &UnitNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("unit %d not found", id)},
		UnitID:      id,
	}
}
