// Package apperr defines the domain error taxonomy shared by every service.
// Services wrap these sentinels with eris context; the HTTP layer classifies
// them back into a status code and a stable machine-readable code.
package apperr

import (
	"net/http"

	"github.com/rotisserie/eris"
)

var (
	// ErrAuthentication covers missing, malformed, or expired credentials.
	ErrAuthentication = eris.New("unauthorized")
	// ErrPermissionDenied covers callers acting outside their workspace membership.
	ErrPermissionDenied = eris.New("forbidden")
	// ErrNotFound covers absent entities and, for reads, archived pages.
	ErrNotFound = eris.New("not found")
	// ErrValidation covers malformed enum or field values.
	ErrValidation = eris.New("validation error")
	// ErrConflict covers unique-constraint violations such as duplicate emails or slugs.
	ErrConflict = eris.New("conflict")
)

// StatusOf maps a domain error to its HTTP status. Unrecognized errors are
// treated as internal failures.
func StatusOf(err error) int {
	switch {
	case eris.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case eris.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case eris.Is(err, ErrNotFound):
		return http.StatusNotFound
	case eris.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case eris.Is(err, ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf maps a domain error to the stable code rendered in error payloads.
func CodeOf(err error) string {
	switch {
	case eris.Is(err, ErrAuthentication):
		return "unauthorized"
	case eris.Is(err, ErrPermissionDenied):
		return "forbidden"
	case eris.Is(err, ErrNotFound):
		return "not_found"
	case eris.Is(err, ErrValidation):
		return "validation_error"
	case eris.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}

// IsDomain reports whether err belongs to the taxonomy, meaning it is safe to
// surface its message to API clients.
func IsDomain(err error) bool {
	return eris.Is(err, ErrAuthentication) ||
		eris.Is(err, ErrPermissionDenied) ||
		eris.Is(err, ErrNotFound) ||
		eris.Is(err, ErrValidation) ||
		eris.Is(err, ErrConflict)
}
