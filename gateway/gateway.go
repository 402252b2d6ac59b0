// Package gateway sends authenticated requests to the ViteVite backend.
//
// Every request carries the stored access token as a bearer credential. When the
// backend answers 401 the gateway exchanges the refresh token once, stores the
// new pair and re-sends the request once. If that is impossible, or the re-sent
// request is rejected again, the credentials are cleared and the logout hook runs.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/viteviteapp/credentials"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultTimeout = 15 * time.Second

// Refresher exchanges a refresh token for a new token pair
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (credentials.TokenPair, error)
}

// LogoutFunc is invoked once per terminal authorization failure. It plays the
// part of sending the user back to the login entry point.
type LogoutFunc func(ctx context.Context, reason error)

// CredentialStore is the part of credentials.Store the gateway depends on
type CredentialStore interface {
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, bool)
	UpdateTokens(ctx context.Context, tokens credentials.TokenPair) error
	Clear(ctx context.Context) error
}

var _ CredentialStore = (*credentials.Store)(nil)

type skipLogoutHookKey struct{}

// WithoutLogoutHook marks ctx as belonging to an explicit logout. A terminal
// authorization failure on such a request still clears the credentials and
// returns ErrForcedLogout, but the logout hook does not run.
func WithoutLogoutHook(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipLogoutHookKey{}, true)
}

func logoutHookSkipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipLogoutHookKey{}).(bool)
	return skip
}

type Gateway struct {
	store     CredentialStore
	refresher Refresher
	transport http.RoundTripper
	timeout   time.Duration
	onLogout  LogoutFunc
	logger    zerolog.Logger
	metrics   *Metrics
	client    *http.Client

	// serialises recoveries so concurrent 401s share one exchange
	refreshMu sync.Mutex
}

type sendFunc func(*http.Request) (*http.Response, error)

func New(store CredentialStore, refresher Refresher, options ...Option) *Gateway {
	g := &Gateway{
		store:     store,
		refresher: refresher,
		transport: http.DefaultTransport,
		timeout:   defaultTimeout,
		logger:    log.Logger,
	}
	for _, opt := range options {
		opt(g)
	}
	g.client = &http.Client{Transport: g.transport, Timeout: g.timeout}
	return g
}

// Do sends req with the stored credentials. Responses other than 401 are
// returned as they are, whatever their status; transport errors are returned
// unchanged. A terminal authorization failure returns an error matching
// errors.ErrForcedLogout.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	return g.run(req, g.client.Do)
}

// RoundTrip lets the gateway sit under an http.Client. The timeout is then the
// enclosing client's concern.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	return g.run(req, g.transport.RoundTrip)
}

// Client returns an http.Client that routes through the gateway
func (g *Gateway) Client() *http.Client {
	return &http.Client{Transport: g, Timeout: g.timeout}
}

func (g *Gateway) run(req *http.Request, send sendFunc) (*http.Response, error) {
	ctx := req.Context()
	a, err := newAttempt(req)
	if err != nil {
		return nil, err
	}
	logger := g.logger.With().
		Str("request_id", a.requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Logger()

	for {
		token, _ := g.store.AccessToken(ctx)
		out := a.build(token)
		if token != "" {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(out)
		}

		resp, err := send(out)
		if err != nil {
			g.metrics.request(outcomeNetworkError)
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				g.metrics.request(outcomeSuccess)
			} else {
				g.metrics.request(outcomeHTTPError)
			}
			return resp, nil
		}
		drain(resp)

		if a.retried {
			return nil, g.forceLogout(ctx, logger, fmt.Errorf("%w: rejected after refresh", apperrors.ErrInvalidToken))
		}
		if err := g.recoverSession(ctx, logger, a); err != nil {
			return nil, g.forceLogout(ctx, logger, err)
		}
		a.retried = true
		g.metrics.retry()
		logger.Debug().Msg("retrying request with refreshed token")
	}
}

// recoverSession makes a fresh access token available for the retry
func (g *Gateway) recoverSession(ctx context.Context, logger zerolog.Logger, a *attempt) error {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	if current, ok := g.store.AccessToken(ctx); ok && current != a.sentToken {
		g.metrics.refresh(refreshShared)
		logger.Debug().Msg("access token already refreshed by a concurrent request")
		return nil
	}

	refreshToken, ok := g.store.RefreshToken(ctx)
	if !ok {
		g.metrics.refresh(refreshMissing)
		return apperrors.ErrNoRefreshToken
	}

	tokens, err := g.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		g.metrics.refresh(refreshFailed)
		return fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}
	if err := g.store.UpdateTokens(ctx, tokens); err != nil {
		g.metrics.refresh(refreshFailed)
		return fmt.Errorf("store refreshed tokens: %w", err)
	}
	g.metrics.refresh(refreshExchanged)
	logger.Debug().Msg("access token refreshed")
	return nil
}

func (g *Gateway) forceLogout(ctx context.Context, logger zerolog.Logger, reason error) error {
	if err := g.store.Clear(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to clear credentials on forced logout")
	}
	g.metrics.request(outcomeForcedLogout)
	g.metrics.forcedLogout()
	if logoutHookSkipped(ctx) {
		logger.Debug().Err(reason).Msg("credentials rejected during logout")
		return fmt.Errorf("%w: %w", apperrors.ErrForcedLogout, reason)
	}
	logger.Warn().Err(reason).Msg("forced logout")
	if g.onLogout != nil {
		g.onLogout(ctx, reason)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrForcedLogout, reason)
}
