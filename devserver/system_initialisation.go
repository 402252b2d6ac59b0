package devserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jrsteele09/viteviteapp/queue"
	"github.com/jrsteele09/viteviteapp/users"
)

const DefaultSuperAdminName = "System Administrator"

// InitialiseSystem makes sure a super user exists and, when configured, seeds
// sample services into an empty queue. It is safe to run on every start.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	if email := s.config.GetAdminEmail(); email != "" {
		generatedPassword, err := s.createSuperAdmin(ctx, email, s.config.GetAdminPassword())
		if err != nil {
			return err
		}
		if generatedPassword != "" && generatedPassword != s.config.GetAdminPassword() {
			s.logger.Warn().Str("email", email).Str("password", generatedPassword).Msg("generated super admin password, change it")
		}
	}

	if s.config.GetSeedServices() {
		if err := s.seedServices(); err != nil {
			return fmt.Errorf("[server InitialiseSystem] failed to seed services: %w", err)
		}
	}
	return nil
}

// createSuperAdmin creates the super admin user if none exists
func (s *Server) createSuperAdmin(_ context.Context, adminUserEmail, defaultPassword string) (generatedPassword string, err error) {
	existingUser, err := s.users.GetByEmail(adminUserEmail)
	if err == nil && existingUser != nil && existingUser.IsSuper() {
		return "", nil
	}

	generatedPassword = defaultPassword
	if generatedPassword == "" {
		// Generate a secure random password
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createSuperAdmin] failed to generate password: %w", err)
		}
		generatedPassword = base64.URLEncoding.EncodeToString(passwordBytes)
	}

	passwordHash, err := users.HashPassword(generatedPassword)
	if err != nil {
		return "", fmt.Errorf("[server createSuperAdmin] failed to hash password: %w", err)
	}

	adminUser := &users.User{
		Email:        adminUserEmail,
		PasswordHash: passwordHash,
		FullName:     DefaultSuperAdminName,
		Role:         users.RoleSuper,
		DateJoined:   time.Now(),
	}
	if existingUser != nil {
		adminUser.ID = existingUser.ID
	}
	if err := s.users.Upsert(adminUser); err != nil {
		return "", fmt.Errorf("[server createSuperAdmin] failed to create super admin: %w", err)
	}
	return generatedPassword, nil
}

func (s *Server) seedServices() error {
	existing, err := s.queue.ListServices()
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, svc := range []queue.Service{
		{Name: "Civil Registry", Category: "civil", Location: "City Hall, counter 2", Open: true, AvgMinutes: 8},
		{Name: "General Practice", Category: "health", Location: "Central Health Centre", Open: true, AvgMinutes: 12},
		{Name: "Vehicle Registration", Category: "transport", Location: "Transport Office", Open: false, AvgMinutes: 15},
	} {
		if _, err := s.queue.CreateService(svc); err != nil {
			return err
		}
	}
	return nil
}
