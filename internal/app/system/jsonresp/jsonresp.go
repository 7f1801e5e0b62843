// Package jsonresp writes JSON API responses.
//
// Errors are always rendered as
//
//	{ "error": { "code": "not_found", "message": "…", "details": … } }
package jsonresp

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload under the "error" key.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, code, message string, details any) {
	Write(w, status, errorEnvelope{Error: ErrorBody{Code: code, Message: message, Details: details}})
}
