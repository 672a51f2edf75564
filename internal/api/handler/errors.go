package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/chinquiz/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest  = apierr.CodeInvalidRequest
	CodeInvalidInput    = apierr.CodeInvalidInput
	CodeMissingIdentity = apierr.CodeMissingIdentity
	CodeSessionNotFound = apierr.CodeSessionNotFound
	CodeInternalError   = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON decodes a request body into v. An oversized body keeps its own
// error; anything else unreadable is an invalid request.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return NewInvalidRequestError("invalid JSON body")
	}
	return nil
}
