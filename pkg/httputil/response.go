// Package httputil holds the response writers used by the admin API.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Error codes used in admin API error bodies.
const (
	CodeBadData          = "bad data"
	CodeInvalidInjection = "invalid injection"
	CodeForbidden        = "forbidden"
	CodeMethodNotAllowed = "method not allowed"
	CodeResourceConflict = "resource conflict"
)

// ErrorDetail is one entry in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every admin API error.
type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}

// WriteJSON writes data as indented JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// WriteError writes a single-error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Errors: []ErrorDetail{{Code: code, Message: message}}})
}

// WriteBadRequest writes a 400 bad data error.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeBadData, message)
}

// WriteForbidden writes a 403 error.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// WriteMethodNotAllowed writes a 405 error and sets the Allow header.
func WriteMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "allowed methods: "+allow)
}
