// Package credentials persists the signed-in user's token pair and identity.
//
// A Store writes to one of two tiers: a durable tier that survives restarts and
// an ephemeral tier scoped to the current session. The tier is chosen when the
// credentials are saved and recorded so later reads only consult that tier.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Store)(nil)

type Option func(*Store)

// WithLogger sets the logger used for read failures
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds exactly one token pair and identity at a time
type Store struct {
	durable   Tier
	ephemeral Tier
	logger    zerolog.Logger

	mu       sync.RWMutex
	active   Tier
	resolved bool
}

// NewStore creates a store over the two tiers. The active tier is resolved on
// first use: the durable tier when it holds a remembered session, otherwise the
// ephemeral tier.
func NewStore(durable, ephemeral Tier, options ...Option) *Store {
	s := &Store{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Save replaces the stored credentials with tokens and identity in the tier
// selected by persistent, and empties the other tier. An empty access token is
// rejected before anything is written.
func (s *Store) Save(ctx context.Context, tokens TokenPair, identity Identity, persistent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, tokens, identity, persistent)
}

// UpdateTokens stores a new token pair, keeping the current identity and
// persistence preference. A missing refresh token keeps the previous one.
// It fails with ErrNotAuthenticated when the credentials were cleared meanwhile,
// so a late refresh cannot bring a logged out session back.
func (s *Store) UpdateTokens(ctx context.Context, tokens TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier := s.resolveLocked(ctx)
	values, err := tier.Load(ctx)
	if err != nil {
		return fmt.Errorf("update tokens in %s tier: %w", tier.Name(), err)
	}
	if values[KeyAccessToken] == "" {
		return fmt.Errorf("update tokens: %w", apperrors.ErrNotAuthenticated)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = values[KeyRefreshToken]
	}
	identity, _ := decodeIdentity(values)
	return s.saveLocked(ctx, tokens, identity, values[KeyRememberMe] == "true")
}

func (s *Store) saveLocked(ctx context.Context, tokens TokenPair, identity Identity, persistent bool) error {
	if tokens.AccessToken == "" {
		return fmt.Errorf("save credentials: %w: empty access token", apperrors.ErrInvalidToken)
	}
	target, other := s.ephemeral, s.durable
	if persistent {
		target, other = s.durable, s.ephemeral
	}

	if err := target.Replace(ctx, encode(tokens, identity, persistent)); err != nil {
		return fmt.Errorf("save credentials to %s tier: %w", target.Name(), err)
	}
	s.active = target
	s.resolved = true

	if err := other.Clear(ctx); err != nil {
		return fmt.Errorf("clear stale credentials in %s tier: %w", other.Name(), err)
	}
	return nil
}

func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	return s.lookup(ctx, KeyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) (string, bool) {
	return s.lookup(ctx, KeyRefreshToken)
}

// Tokens returns the stored pair; ok is false without an access token
func (s *Store) Tokens(ctx context.Context) (TokenPair, bool) {
	values := s.values(ctx)
	if values[KeyAccessToken] == "" {
		return TokenPair{}, false
	}
	return TokenPair{AccessToken: values[KeyAccessToken], RefreshToken: values[KeyRefreshToken]}, true
}

// Identity rebuilds the identity snapshot; it is absent when the email or role is missing
func (s *Store) Identity(ctx context.Context) (Identity, bool) {
	return decodeIdentity(s.values(ctx))
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.AccessToken(ctx)
	return ok
}

func (s *Store) IsAdmin(ctx context.Context) bool {
	identity, ok := s.Identity(ctx)
	return ok && identity.Role.IsAdmin()
}

// Persistent reports the persistence preference recorded at the last save
func (s *Store) Persistent(ctx context.Context) bool {
	v, _ := s.lookup(ctx, KeyRememberMe)
	return v == "true"
}

// ActiveTier returns the tier reads are served from
func (s *Store) ActiveTier(ctx context.Context) Tier {
	return s.activeTier(ctx)
}

// Clear removes the credentials from both tiers. It is safe to call repeatedly.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := errors.Join(s.durable.Clear(ctx), s.ephemeral.Clear(ctx))
	s.active = s.ephemeral
	s.resolved = true
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Token implements oauth2.TokenSource
func (s *Store) Token() (*oauth2.Token, error) {
	tokens, ok := s.Tokens(context.Background())
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	return tokens.OAuth2(), nil
}

func (s *Store) lookup(ctx context.Context, key string) (string, bool) {
	v, ok := s.values(ctx)[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Store) values(ctx context.Context) map[string]string {
	tier := s.activeTier(ctx)
	values, err := tier.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("tier", tier.Name()).Msg("credential read failed")
		return map[string]string{}
	}
	return values
}

func (s *Store) activeTier(ctx context.Context) Tier {
	s.mu.RLock()
	if s.resolved {
		defer s.mu.RUnlock()
		return s.active
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(ctx)
}

// resolveLocked picks the active tier once; s.mu must be held for writing
func (s *Store) resolveLocked(ctx context.Context) Tier {
	if s.resolved {
		return s.active
	}
	s.active = s.ephemeral
	values, err := s.durable.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Str("tier", s.durable.Name()).Msg("durable credentials unreadable, using ephemeral tier")
	case values[KeyRememberMe] == "true":
		s.active = s.durable
	}
	s.resolved = true
	return s.active
}

func encode(tokens TokenPair, identity Identity, persistent bool) map[string]string {
	values := map[string]string{
		KeyAccessToken: tokens.AccessToken,
		KeyRememberMe:  strconv.FormatBool(persistent),
	}
	set := func(key, value string) {
		if value != "" {
			values[key] = value
		}
	}
	set(KeyRefreshToken, tokens.RefreshToken)
	set(KeyUserEmail, identity.Email)
	set(KeyUserRole, string(identity.Role))
	set(KeyUserName, identity.FullName)
	return values
}

func decodeIdentity(values map[string]string) (Identity, bool) {
	email, rawRole := values[KeyUserEmail], values[KeyUserRole]
	if email == "" || rawRole == "" {
		return Identity{}, false
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Identity{}, false
	}
	return Identity{Email: email, Role: role, FullName: values[KeyUserName]}, true
}
