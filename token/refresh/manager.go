package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo        Repo
	tokenLength int
	expiry      time.Duration
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, tokenLength int, expiry time.Duration) *Manager {
	return &Manager{
		repo:        repo,
		tokenLength: tokenLength,
		expiry:      expiry,
	}
}

// Create generates a new refresh token for the user, replacing any previous one
func (m *Manager) Create(userID string) (string, error) {
	// Single refresh token per user
	if existingToken, err := m.repo.GetByUserID(userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(existingToken.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Consume validates token and removes it so it can only be exchanged once.
// It returns the stored metadata of the consumed token.
func (m *Manager) Consume(token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err := m.repo.Delete(token); err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	return rt, nil
}

// GetByUserID returns the refresh token currently held by the user
func (m *Manager) GetByUserID(userID string) (*StoredRefreshToken, error) {
	return m.repo.GetByUserID(userID)
}

// Get retrieves a refresh token from storage
func (m *Manager) Get(token string) (*StoredRefreshToken, error) {
	return m.repo.Get(token)
}

// Delete removes a refresh token from storage
func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// IsExpired checks if a refresh token has outlived the configured expiry
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.expiry
}
