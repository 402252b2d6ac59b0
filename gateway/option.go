package gateway

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Option func(*Gateway)

// WithTransport sets the transport used for every send
func WithTransport(transport http.RoundTripper) Option {
	return func(g *Gateway) {
		g.transport = transport
	}
}

// WithTimeout bounds each send made through Do
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = timeout
	}
}

// WithLogoutFunc sets the hook run on forced logout, after credentials are cleared
func WithLogoutFunc(fn LogoutFunc) Option {
	return func(g *Gateway) {
		g.onLogout = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(g *Gateway) {
		g.metrics = metrics
	}
}
