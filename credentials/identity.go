package credentials

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

// Role is the server asserted role cached on the client
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleSuper Role = "super"
)

// ParseRole accepts the backend's role names case-insensitively
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleSuper:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownRole, s)
}

// IsAdmin reports whether the role may see administrative screens.
// It gates presentation only; the backend re-checks the role on every privileged call.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuper
}

func (r Role) String() string {
	return string(r)
}

// Identity is a cached copy of the identity the backend returned at login
type Identity struct {
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name,omitempty"`
}

// DisplayName prefers the full name and falls back to the email
func (i Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Email
}
