package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorCode enumerates the error body's "error" discriminant.
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "not_found"
	CodeInvalidRequest ErrorCode = "invalid_request"
	CodeConflict      ErrorCode = "conflict"
	CodeInternal      ErrorCode = "internal_error"
)

var statusForCode = map[ErrorCode]int{
	CodeNotFound:       http.StatusNotFound,
	CodeInvalidRequest: http.StatusBadRequest,
	CodeConflict:       http.StatusConflict,
	CodeInternal:       http.StatusInternalServerError,
}

// ApiError is the uniform error response body.
type ApiError struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}

func writeError(w http.ResponseWriter, code ErrorCode, message string) {
	status, ok := statusForCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, ApiError{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
