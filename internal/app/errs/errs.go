// Package errs defines the error taxonomy shared by services and the HTTP
// boundary.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotConfigured indicates a required external dependency (datastore,
// payment processor) is absent. Mapped to HTTP 503 so clients can tell
// "try later" from "broken".
var ErrNotConfigured = errors.New("not configured")

// ErrNotFound indicates an unknown record id. Mapped to HTTP 404.
var ErrNotFound = errors.New("not found")

// ValidationError carries per-field messages for caller-correctable input
// problems. Mapped to HTTP 400.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Empty reports whether any field message has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Add records a field message, allocating the map on first use.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// UpstreamError wraps a failure from an external collaborator. CallerError
// distinguishes caller-correctable failures (HTTP 400) from internal ones
// (HTTP 500).
type UpstreamError struct {
	Service     string
	Err         error
	CallerError bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
