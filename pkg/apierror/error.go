package apierror

import (
	"encoding/json"
	"net/http"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// ToJSON renders {"success":false,"error":{...}}.
func (e *Error) ToJSON() []byte {
	body := struct {
		Success bool   `json:"success"`
		Error   *Error `json:"error"`
	}{Error: e}
	data, _ := json.Marshal(body)
	return data
}

// Write sends the error with its status code.
func Write(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(e.ToJSON())
}

func newError(status int, code, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{StatusCode: status, Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return newError(http.StatusBadRequest, "BAD_REQUEST", message, "Bad request")
}

// ValidationError creates a 400 error with validation details.
func ValidationError(message string, details ...FieldError) *Error {
	e := newError(http.StatusBadRequest, "VALIDATION_ERROR", message, "Validation failed")
	e.Details = details
	return e
}

func Unauthorized(message string) *Error {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", message, "Authentication required")
}

func NotFound(message string) *Error {
	return newError(http.StatusNotFound, "NOT_FOUND", message, "Resource not found")
}

// ItemNotFound — id ещё не записан в леджер.
func ItemNotFound(message string) *Error {
	return newError(http.StatusNotFound, "ITEM_NOT_FOUND", message, "Item not found")
}

func TxNotFound(message string) *Error {
	return newError(http.StatusNotFound, "TX_NOT_FOUND", message, "Transaction not found")
}

func Conflict(message string) *Error {
	return newError(http.StatusConflict, "CONFLICT", message, "Conflict")
}

func LoginTaken(message string) *Error {
	return newError(http.StatusConflict, "LOGIN_TAKEN", message, "Login already taken")
}

func InternalError(message string) *Error {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", message, "An unexpected error occurred")
}

func ServiceUnavailable(message string) *Error {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message, "Service temporarily unavailable")
}
