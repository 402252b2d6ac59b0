// Package session ties the backend's login and registration endpoints to the
// credential store.
package session

import (
	"context"
	"fmt"

	"github.com/jrsteele09/viteviteapp/apimodel"
	"github.com/jrsteele09/viteviteapp/credentials"
	"github.com/jrsteele09/viteviteapp/gateway"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Authenticator is the part of api.AuthClient the manager needs
type Authenticator interface {
	Login(ctx context.Context, req apimodel.LoginRequest) (*apimodel.AuthResponse, error)
	Register(ctx context.Context, req apimodel.RegisterRequest) (*apimodel.AuthResponse, error)
}

// Revoker ends the session on the backend. api.Client satisfies it.
type Revoker interface {
	Logout(ctx context.Context) error
}

type Option func(*Manager)

// WithRevoker asks the backend to revoke the tokens on Logout
func WithRevoker(revoker Revoker) Option {
	return func(m *Manager) {
		m.revoker = revoker
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

type Manager struct {
	auth    Authenticator
	store   *credentials.Store
	revoker Revoker
	logger  zerolog.Logger
}

func NewManager(auth Authenticator, store *credentials.Store, options ...Option) *Manager {
	m := &Manager{auth: auth, store: store, logger: log.Logger}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Login authenticates and stores the returned credentials. remember selects
// the durable tier.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (credentials.Identity, error) {
	resp, err := m.auth.Login(ctx, apimodel.LoginRequest{Email: email, Password: password})
	if err != nil {
		return credentials.Identity{}, err
	}
	return m.establish(ctx, resp, remember)
}

// Register creates the account and signs it in
func (m *Manager) Register(ctx context.Context, req apimodel.RegisterRequest, remember bool) (credentials.Identity, error) {
	resp, err := m.auth.Register(ctx, req)
	if err != nil {
		return credentials.Identity{}, err
	}
	return m.establish(ctx, resp, remember)
}

// Logout forgets the credentials. Revocation on the backend is best effort;
// the local credentials are cleared whatever it answers.
func (m *Manager) Logout(ctx context.Context) error {
	if m.revoker != nil && m.store.IsAuthenticated(ctx) {
		if err := m.revoker.Logout(gateway.WithoutLogoutHook(ctx)); err != nil {
			m.logger.Debug().Err(err).Msg("backend logout failed")
		}
	}
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info().Msg("logged out")
	return nil
}

// Current returns the cached identity of the signed-in user
func (m *Manager) Current(ctx context.Context) (credentials.Identity, bool) {
	if !m.store.IsAuthenticated(ctx) {
		return credentials.Identity{}, false
	}
	return m.store.Identity(ctx)
}

func (m *Manager) establish(ctx context.Context, resp *apimodel.AuthResponse, remember bool) (credentials.Identity, error) {
	role, err := credentials.ParseRole(resp.User.Role)
	if err != nil {
		return credentials.Identity{}, fmt.Errorf("login response: %w", err)
	}
	if resp.Tokens.AccessToken == "" {
		return credentials.Identity{}, fmt.Errorf("login response: %w: missing access token", apperrors.ErrInvalidToken)
	}
	identity := credentials.Identity{Email: resp.User.Email, Role: role, FullName: resp.User.FullName}
	tokens := credentials.TokenPair{AccessToken: resp.Tokens.AccessToken, RefreshToken: resp.Tokens.RefreshToken}
	if err := m.store.Save(ctx, tokens, identity, remember); err != nil {
		return credentials.Identity{}, err
	}
	m.logger.Info().Str("email", identity.Email).Str("role", identity.Role.String()).Bool("remember", remember).Msg("signed in")
	return identity, nil
}
