package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/lifeline/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Event *int   `json:"event,omitempty"` // index of the offending input event
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string, code errors.Code) {
	writeJSON(w, status, errorBody{Error: msg, Code: string(code)})
}

// writeErr maps err to a status and writes it. Internal errors are not
// echoed to the client.
func writeErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := errorBody{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}
	if i, ok := errors.EventIndex(err); ok {
		body.Event = &i
	}
	writeJSON(w, status, body)
}

// writeBytes writes a raw artifact.
func writeBytes(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(data)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeMalformedSequence, errors.ErrCodeUnknownActor:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// contentTypes maps pipeline formats to response content types.
var contentTypes = map[string]string{
	"svg":      "image/svg+xml",
	"json":     "application/json",
	"dot":      "text/vnd.graphviz; charset=utf-8",
	"overview": "image/svg+xml",
}
