package credentials

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenPair is the access/refresh credential pair issued by the backend.
// An empty RefreshToken means the backend did not issue one.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HasRefreshToken reports whether the pair can be used to mint a new access token
func (t TokenPair) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// Expiry decodes the access token's exp claim without verifying the signature.
// The backend is the only party able to verify the token; the value is a display hint.
// Opaque or malformed tokens yield the zero time.
func (t TokenPair) Expiry() time.Time {
	if t.AccessToken == "" {
		return time.Time{}
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(t.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// OAuth2 converts the pair to an oauth2 bearer token
func (t TokenPair) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       t.Expiry(),
	}
}
