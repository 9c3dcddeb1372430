package utils

import "net/http"

// APIError is an error that already knows how it should be rendered.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func NewValidationError(details []string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "Dados inválidos",
		Details: details,
	}
}

func NewBadRequest(code, message string) *APIError {
	return NewAPIError(http.StatusBadRequest, code, message)
}

func NewNotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, "NOT_FOUND", message)
}

func NewConflict(code, message string) *APIError {
	return NewAPIError(http.StatusConflict, code, message)
}

func NewInternal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

var ErrInvalidID = NewBadRequest("INVALID_ID", "ID inválido")
