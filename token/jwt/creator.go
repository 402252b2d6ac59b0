package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/viteviteapp/token/keys"
	"github.com/jrsteele09/viteviteapp/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Creator handles access token creation
type Creator struct {
	issuer string
	expiry time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(issuer string, expiry time.Duration) *Creator {
	return &Creator{
		issuer: issuer,
		expiry: expiry,
	}
}

// Expiry is the lifetime of the access tokens this creator issues
func (c *Creator) Expiry() time.Duration {
	return c.expiry
}

// CreateAccessToken creates a short lived bearer token for the user
func (c *Creator) CreateAccessToken(user *users.User, signer keys.Signer) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":   c.issuer,                       // The issuer of the token
		"sub":   user.ID,                        // The user the token was issued to
		"email": user.Email,                     // Display only, the subject is authoritative
		"role":  string(user.Role),              // Platform role checked by admin routes
		"iat":   int64(now.Unix()),              // Issued At: the time at which the token was issued
		"exp":   int64(now.Add(c.expiry).Unix()), // Expiry: when the token will expire
		"jti":   uuid.New().String(),            // Unique token ID for revocation
	}

	signedToken, err := signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}
