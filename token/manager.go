// Package token issues and verifies the development backend's credentials:
// short lived HMAC signed JWT access tokens and opaque rotating refresh tokens.
package token

import (
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/token/jwt"
	"github.com/jrsteele09/viteviteapp/token/keys"
	"github.com/jrsteele09/viteviteapp/token/refresh"
	"github.com/jrsteele09/viteviteapp/users"
)

// Pair is an issued access token with its refresh token
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type Manager struct {
	signer       keys.Signer
	creator      *jwt.Creator
	inspector    *jwt.Inspector
	refresh      *refresh.Manager
	userRepo     users.UserRepo
	revokedCache RevokedTokenCache
	nowFunc      func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

// New builds a manager. issuer is written to and required of every access token.
func New(signer keys.Signer, issuer string, accessTokenExpiry time.Duration, refreshManager *refresh.Manager, userRepo users.UserRepo, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:   signer,
		refresh:  refreshManager,
		userRepo: userRepo,
	}
	for _, opt := range options {
		opt(m)
	}

	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	if m.revokedCache == nil {
		m.revokedCache = NewInMemoryRevokedTokenCache(m.nowFunc)
	}
	if accessTokenExpiry == 0 {
		accessTokenExpiry = time.Minute
	}
	m.creator = jwt.NewCreator(issuer, accessTokenExpiry)
	m.inspector = jwt.NewInspector(issuer, m.revokedCache)
	return m
}

// Issue creates a fresh pair for user, replacing any refresh token it held
func (m *Manager) Issue(user *users.User) (*Pair, error) {
	accessToken, err := m.creator.CreateAccessToken(user, m.signer)
	if err != nil {
		return nil, fmt.Errorf("Manager.Issue CreateAccessToken: %w", err)
	}
	refreshToken, err := m.refresh.Create(user.ID)
	if err != nil {
		return nil, fmt.Errorf("Manager.Issue CreateRefreshToken: %w", err)
	}
	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(m.creator.Expiry().Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed whether or not the exchange succeeds.
func (m *Manager) Refresh(refreshToken string) (*Pair, *users.User, error) {
	rt, err := m.refresh.Consume(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := m.userRepo.GetByID(rt.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: user not found for refresh token", apperrors.ErrInvalidRefreshToken)
	}
	if user.Blocked {
		return nil, nil, fmt.Errorf("%w: user is blocked", apperrors.ErrInvalidRefreshToken)
	}

	pair, err := m.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Introspect verifies a bearer access token
func (m *Manager) Introspect(rawToken string) (*jwt.TokenIntrospection, error) {
	return m.inspector.Introspect(rawToken, m.signer)
}

// Revoke invalidates a verified access token until it expires, along with
// the refresh token held by the same user.
func (m *Manager) Revoke(rawToken string) error {
	ti, err := m.Introspect(rawToken)
	if err != nil {
		return err
	}
	if rt, err := m.refresh.GetByUserID(ti.Sub); err == nil {
		_ = m.refresh.Delete(rt.Token)
	}
	if ti.Jti == "" {
		return fmt.Errorf("%w: token missing jti claim", apperrors.ErrInvalidToken)
	}
	return m.revokedCache.Add(ti.Jti, ti.ExpiresAt())
}

// CleanupRevokedTokens drops revocations whose tokens have expired anyway
func (m *Manager) CleanupRevokedTokens() {
	m.revokedCache.Cleanup()
}
