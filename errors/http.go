package errors

import (
	stderrors "errors"
	"net/http"
)

// MapToHTTPStatus translates domain failures into transport status codes.
// Unknown errors are reported as internal failures on purpose: a caller
// must never be told a command succeeded when the outcome is unclear.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrInvalidCommand):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUnknownEventKind):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
