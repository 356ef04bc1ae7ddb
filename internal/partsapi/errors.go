package partsapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTransport wraps every failure to reach the server or read its reply.
var ErrTransport = errors.New("parts api unreachable")

// FieldError is one server-side validation message.
type FieldError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// FieldErrors maps form field names to their validation messages.
type FieldErrors map[string][]FieldError

// First returns the first message for field, if any.
func (f FieldErrors) First(field string) (string, bool) {
	if errs := f[field]; len(errs) > 0 {
		return errs[0].Message, true
	}
	return "", false
}

// Fields returns the field names in a stable order.
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RejectedError is returned when the server answered with success=false.
type RejectedError struct {
	StatusCode int
	Message    string
	Fields     FieldErrors
}

func (e *RejectedError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("rejected by server (%d): %s", e.StatusCode, e.Message)
	}
	var parts []string
	for _, name := range e.Fields.Fields() {
		for _, fe := range e.Fields[name] {
			parts = append(parts, name+": "+fe.Message)
		}
	}
	return fmt.Sprintf("rejected by server (%d): %s [%s]", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Validation reports whether the rejection carries field-level errors.
func (e *RejectedError) Validation() bool {
	return len(e.Fields) > 0
}

// StatusError is a non-2xx reply that did not carry the result envelope.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ServerMessage extracts the human-readable server text from err, if the
// server sent one.
func ServerMessage(err error) (string, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message, true
	}
	var status *StatusError
	if errors.As(err, &status) && status.Message != "" {
		return status.Message, true
	}
	return "", false
}
