package users

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the single platform role a user holds
type RoleType string

const (
	RoleUser  RoleType = "user"  // Citizen taking tickets
	RoleAdmin RoleType = "admin" // Manages services and queues
	RoleSuper RoleType = "super" // Manages admins and every service
)

func (r RoleType) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuper:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id,omitempty"`          // Unique identifier for the user
	Email        string    `json:"email,omitempty"`       // User's email address, unique
	PasswordHash string    `json:"-"`                     // Hashed version of the user's password - never serialize
	FullName     string    `json:"full_name,omitempty"`   // Display name
	Phone        string    `json:"phone,omitempty"`       // Contact number for queue notifications
	Role         RoleType  `json:"role,omitempty"`        // Platform role
	DateJoined   time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin    time.Time `json:"last_login,omitempty"`  // Last time the user logged in
	Blocked      bool      `json:"blocked,omitempty"`     // Blocked, has the user been blocked from logging in
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsAdmin returns true for roles allowed to manage services
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuper
}

func (u *User) IsSuper() bool {
	return u.Role == RoleSuper
}
