package apimodel

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register.
// Role defaults to "user" when empty; the backend decides whether a caller may
// register a privileged role.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin super"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Tokens is the token pair as sent on the wire.
// The refresh endpoint returns it as the whole body.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// User is the identity the backend asserts for the caller
type User struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Tokens Tokens `json:"tokens"`
	User   User   `json:"user"`
}
