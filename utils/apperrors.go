package utils

import "net/http"

type ErrorKind string

const (
	KindValidation       ErrorKind = "validation_error"
	KindNotFound         ErrorKind = "not_found"
	KindDuplicate        ErrorKind = "duplicate_entity"
	KindInvalidReference ErrorKind = "invalid_reference"
	KindHasDependents    ErrorKind = "has_dependent_items"
	KindInvalidItems     ErrorKind = "invalid_items"
)

// AppError is the structured error the domain operations hand back to the
// HTTP boundary: a kind, a human message and optional per-field details.
// "Not found" deliberately covers both absent entities and entities owned by
// another restaurant, so cross-tenant existence never leaks.
type AppError struct {
	Kind    ErrorKind         `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fieldErrors,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func ValidationError(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func DuplicateError(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindDuplicate, Message: message, Fields: fields}
}

func InvalidReferenceError(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindInvalidReference, Message: message, Fields: fields}
}

func HasDependentsError(message string) *AppError {
	return &AppError{Kind: KindHasDependents, Message: message}
}

func InvalidItemsError(message string) *AppError {
	return &AppError{Kind: KindInvalidItems, Message: message}
}
