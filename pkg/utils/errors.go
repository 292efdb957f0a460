package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an application error for API mapping
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidation        ErrorKind = "validation"
	KindCollaborator      ErrorKind = "collaborator"
	KindParse             ErrorKind = "parse"
)

// CustomError represents a custom application error
type CustomError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors

func NewNotFoundError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindNotFound,
		Code:    http.StatusNotFound,
		Message: "Record not found",
		Detail:  detail,
	}
}

func NewInvalidTransitionError(from, to string) *CustomError {
	return &CustomError{
		Kind:    KindInvalidTransition,
		Code:    http.StatusConflict,
		Message: "Invalid status transition",
		Detail:  fmt.Sprintf("transition %s -> %s is not permitted", from, to),
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindValidation,
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewCollaboratorError(collaborator string, err error) *CustomError {
	return &CustomError{
		Kind:    KindCollaborator,
		Code:    http.StatusBadGateway,
		Message: fmt.Sprintf("%s collaborator call failed", collaborator),
		Detail:  err.Error(),
	}
}

func NewParseError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindParse,
		Code:    http.StatusBadGateway,
		Message: "Collaborator returned unparseable content",
		Detail:  detail,
	}
}

// AsCustomError unwraps err into a *CustomError if possible
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err is a CustomError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	if ce, ok := AsCustomError(err); ok {
		return ce.Kind == kind
	}
	return false
}
