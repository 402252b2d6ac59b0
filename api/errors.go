package api

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

// Error is a non-2xx answer from the backend
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the shared sentinel errors so callers can use errors.Is
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidRequest
	case http.StatusUnauthorized:
		return apperrors.ErrInvalidCredentials
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		return apperrors.ErrConflict
	}
	return nil
}
