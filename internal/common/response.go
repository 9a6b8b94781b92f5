package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope used for infrastructure errors (routing, limits,
// idempotency).
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// MessageBody is the envelope checkout clients expect from the order
// endpoints: a human message plus an optional error summary.
type MessageBody struct {
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an infrastructure error using ErrorBody.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// JSONMessage renders a MessageBody.
func JSONMessage(w http.ResponseWriter, status int, message string, summary any) {
	JSON(w, status, MessageBody{Message: message, Error: summary})
}

// WriteAppError renders err as a MessageBody. Details are only exposed for
// server-side failures, where they carry a client-safe upstream summary.
// Errors that are not AppErrors become a bare 500 with fallbackMessage.
func WriteAppError(w http.ResponseWriter, err error, fallbackMessage string) {
	appErr, ok := AsAppError(err)
	if !ok {
		JSONMessage(w, http.StatusInternalServerError, fallbackMessage, nil)
		return
	}
	var summary any
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		summary = appErr.Details
	}
	JSONMessage(w, appErr.HTTPStatus, appErr.Message, summary)
}
