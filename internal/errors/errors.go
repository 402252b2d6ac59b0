package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the client and the development backend
var (
	// Credential errors
	ErrStorageUnavailable = errors.New("credential storage unavailable")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAdmin           = errors.New("admin role required")
	ErrUnknownRole        = errors.New("unknown role")

	// Session errors
	ErrForcedLogout   = errors.New("session expired, please log in again")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrRefreshFailed  = errors.New("refresh exchange failed")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Queue errors
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceClosed   = errors.New("service is closed")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrTicketClosed    = errors.New("ticket is no longer active")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
