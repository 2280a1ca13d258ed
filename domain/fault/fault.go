package fault

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid      = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err is one of the caller-facing kinds.
// Anything else is an infrastructure failure.
func IsClientError(err error) bool {
	return err != nil && (errors.Is(err, ErrInvalid) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict))
}

// Message strips the kind prefix, and any context wrapped around it, so
// responses carry only the detail.
func Message(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrInvalid, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict} {
		if !errors.Is(err, kind) {
			continue
		}
		prefix := kind.Error() + ": "
		if i := strings.Index(msg, prefix); i >= 0 && len(msg) > i+len(prefix) {
			return msg[i+len(prefix):]
		}
	}
	return msg
}
