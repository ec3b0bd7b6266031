package errs

import (
	"net/http"
)

// ValidationMessage is the envelope message attached to every 406 response.
const ValidationMessage = "Fix the following error"

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		// http.StatusText(404) => "Not Found" => "NOT_FOUND"
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// Ownership failures use it too: a page that exists but belongs to someone
// else is reported exactly like a page that does not exist.
func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewValidationError creates a 406 Not Acceptable HTTPError carrying field errors.
//
// This is what clients receive for malformed or out-of-policy payloads.
func NewValidationError(fields FieldErrors) *HTTPError {
	err := newHTTPError(http.StatusNotAcceptable, ValidationMessage)
	err.ErrorDict = fields
	return err
}

// NewFieldError is a shorthand for a validation error on a single field.
func NewFieldError(field, message string) *HTTPError {
	fields := FieldErrors{}
	fields.Add(field, message)
	return NewValidationError(fields)
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError() *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// Note:
//   - message is the generic status text, not the real internal error message.
//   - the real error is logged server-side by the global error handler.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
