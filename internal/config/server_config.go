package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	portEnvVar            = "PORT"
	signingSecretVar      = "VITEVITE_SIGNING_SECRET"
	accessTokenExpiryVar  = "VITEVITE_ACCESS_TOKEN_EXPIRY"
	refreshTokenExpiryVar = "VITEVITE_REFRESH_TOKEN_EXPIRY"
	adminEmailVar         = "VITEVITE_ADMIN_EMAIL"
	adminPasswordVar      = "VITEVITE_ADMIN_PASSWORD"
	seedServicesVar       = "VITEVITE_SEED_SERVICES"
)

type ServerConfig interface {
	GetPort() string
	GetSigningSecret() string
	GetIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetAdminEmail() string
	GetAdminPassword() string
	GetSeedServices() bool
}

type Server struct{}

var _ ServerConfig = Server{}

func (Server) GetPort() string {
	port := GetEnv(portEnvVar, "8000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Server) GetSigningSecret() string {
	return GetEnv(signingSecretVar, "vitevite-dev-secret")
}

func (Server) GetIssuer() string {
	return "vitevite-devserver"
}

func (Server) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration(accessTokenExpiryVar, 15*time.Minute)
}

func (Server) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration(refreshTokenExpiryVar, 7*24*time.Hour) // 7 days
}

func (Server) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

// GetAdminEmail is the super user seeded at startup; empty disables seeding
func (Server) GetAdminEmail() string {
	return GetEnv(adminEmailVar, "admin@vitevite.local")
}

func (Server) GetAdminPassword() string {
	return GetEnv(adminPasswordVar, "Admin1234")
}

// GetSeedServices adds a few sample services to an empty queue at startup
func (Server) GetSeedServices() bool {
	return strings.EqualFold(GetEnv(seedServicesVar, "true"), "true")
}
