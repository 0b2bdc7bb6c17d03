package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error returned by Client wraps exactly one of them.
var (
	// ErrNetwork covers requests that never produced an HTTP response.
	ErrNetwork = errors.New("network failure")
	// ErrStatus covers any non-2xx response; 4xx and 5xx are not distinguished.
	ErrStatus = errors.New("unexpected status")
	// ErrApplication covers 2xx responses carrying an {"error": ...} payload.
	ErrApplication = errors.New("application error")
)

// Error describes one failed backend call.
type Error struct {
	Kind    error
	Method  string
	Path    string
	Status  int
	Message string
	Payload json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Kind, ErrNetwork):
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
		}
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, ErrNetwork)
	case errors.Is(e.Kind, ErrStatus):
		return fmt.Sprintf("HTTP Error %d", e.Status)
	default:
		return e.Message
	}
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the server supplied error text carried by err, whatever
// the status code. ok is false when the backend did not send one.
func Message(err error) (string, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if apiErr.Message == "" || errors.Is(apiErr.Kind, ErrNetwork) {
		return "", false
	}
	return apiErr.Message, true
}

// PayloadText renders the raw error payload the way the browser did with
// JSON.stringify, falling back to the error text.
func PayloadText(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && len(apiErr.Payload) > 0 {
		return strings.TrimSpace(string(apiErr.Payload))
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// errorEnvelope matches {"error": "..."} bodies. Django views also answer
// {"error": {"field": [...]}} for form errors, so the value stays raw.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

func extractMessage(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 || string(env.Error) == "null" {
		return "", false
	}
	var text string
	if err := json.Unmarshal(env.Error, &text); err == nil {
		if text == "" {
			return "", false
		}
		return text, true
	}
	return string(env.Error), true
}
