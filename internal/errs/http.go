// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures..
// (e.g. FieldErrors for payloads or HTTPError for API responses)..
// to ensure the client receive meaningful, actionable, and consistent..
// error messages.
//
// - Return consistent error envelopes to API clients (JSON).
// - Support field-level validation errors keyed by field name.
// - Provide errors that play nicely with Go's standard errors package.
package errs

import (
	"sort"
	"strings"
)

// FieldErrors maps a payload field name to every message raised against it.
// Example:
//
//	{ "page_name": ["is required"], "color": ["must be a valid color"] }
type FieldErrors map[string][]string

// Add appends a message for field, creating the entry when needed.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Fields returns the field names in a stable order. Mostly useful for logs.
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// It is designed to be serialized directly to JSON as the error envelope.
// Fields:
//   - Code: machine-friendly error code (e.g. "NOT_FOUND").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - ErrorDict: per-field errors (validation), omitted when empty.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`

	// ErrorDict holds field-level validation errors.
	ErrorDict FieldErrors `json:"error_dict,omitempty"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
//
// It returns the Message, so printing/logging the error shows the message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// This does NOT compare Code/Status/etc.
// It only checks whether the other thing is the same *type* (*HTTPError).
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Not Acceptable" -> "NOT_ACCEPTABLE"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
