// Package httpx writes the JSON replies the POS backend answers with: a
// payload, an {"error": msg} envelope or an {"html": fragment} partial.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("authentication required")
)

// statusOf lists the sentinels RespondError knows, most specific first.
var statusOf = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrValidation, http.StatusBadRequest},
	{ErrForbidden, http.StatusForbidden},
	{ErrUnauthorized, http.StatusUnauthorized},
}

// ErrorBody is the error envelope the views answer with.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// RespondError answers with the status of the sentinel err wraps, or 500.
// A 404 always reads "Not found" like the backend's own page.
func RespondError(w http.ResponseWriter, err error) {
	for _, s := range statusOf {
		if !errors.Is(err, s.err) {
			continue
		}
		msg := err.Error()
		if s.status == http.StatusNotFound {
			msg = "Not found"
		}
		Error(w, s.status, msg)
		return
	}
	Error(w, http.StatusInternalServerError, err.Error())
}

// Fragment sends {"html": html}, the reply of partial views.
func Fragment(w http.ResponseWriter, html string) {
	JSON(w, http.StatusOK, map[string]string{"html": html})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
