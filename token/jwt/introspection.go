package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/token/keys"
)

// TokenIntrospection is what the backend knows about a verified access token
type TokenIntrospection struct {
	Active bool   `json:"active"`          // True or false - Is the token valid
	Sub    string `json:"sub,omitempty"`   // Users unique ID
	Email  string `json:"email,omitempty"` // Email at issue time
	Role   string `json:"role,omitempty"`  // Role at issue time
	Iss    string `json:"iss,omitempty"`   // Issuer of the token
	Jti    string `json:"jti,omitempty"`   // Token ID
	Iat    int64  `json:"iat,omitempty"`   // Issued at time
	Exp    int64  `json:"exp,omitempty"`   // Expiration
}

// ExpiresAt returns the expiry as a time
func (ti *TokenIntrospection) ExpiresAt() time.Time {
	return time.Unix(ti.Exp, 0)
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector handles JWT token introspection and validation
type Inspector struct {
	issuer         string
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector
func NewInspector(issuer string, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		issuer:         issuer,
		revokedChecker: revokedChecker,
	}
}

// Introspect verifies rawToken with signer. Expired tokens fail with
// ErrTokenExpired, everything else that does not verify with ErrInvalidToken.
func (i *Inspector) Introspect(rawToken string, signer keys.Signer) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, apperrors.ErrInvalidToken
	}

	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(i.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	token, err := parser.ParseWithClaims(rawToken, jwtlib.MapClaims{}, signer.GetVerificationKey)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return &TokenIntrospection{Active: false}, apperrors.ErrTokenExpired
		}
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return &TokenIntrospection{Active: false}, apperrors.ErrInvalidToken
	}

	iss, _ := claims["iss"].(string)
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	if sub == "" {
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: missing subject", apperrors.ErrInvalidToken)
	}

	// Check if token has been revoked
	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		return &TokenIntrospection{Active: false}, fmt.Errorf("%w: revoked", apperrors.ErrInvalidToken)
	}

	return &TokenIntrospection{
		Active: true,
		Sub:    sub,
		Email:  email,
		Role:   role,
		Iss:    iss,
		Jti:    jti,
		Iat:    int64(iat),
		Exp:    int64(exp),
	}, nil
}
