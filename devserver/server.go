// Package devserver is an in-process ViteVite backend. It serves the JSON API
// the client talks to: login, registration, the refresh exchange and the queue
// endpoints, with short lived JWT access tokens and rotating refresh tokens.
package devserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/viteviteapp/internal/config"
	"github.com/jrsteele09/viteviteapp/queue"
	"github.com/jrsteele09/viteviteapp/token"
	"github.com/jrsteele09/viteviteapp/token/keys"
	"github.com/jrsteele09/viteviteapp/token/refresh"
	"github.com/jrsteele09/viteviteapp/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repos is the storage the server runs on
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
	Queue         queue.Repo
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	logger zerolog.Logger

	users  users.UserRepo
	tokens *token.Manager
	queue  *queue.Manager
}

func New(config config.Config, repos Repos, options ...Option) (*Server, error) {
	refreshManager := refresh.NewManager(repos.RefreshTokens, config.GetRefreshTokenLength(), config.GetRefreshTokenExpiry())
	s := &Server{
		env:    config.GetEnv(),
		mux:    http.NewServeMux(),
		config: config,
		logger: log.Logger,
		users:  repos.Users,
		tokens: token.New(
			keys.NewHMACSigner(config.GetSigningSecret()),
			config.GetIssuer(),
			config.GetAccessTokenExpiry(),
			refreshManager,
			repos.Users,
		),
		queue: queue.NewManager(repos.Queue),
	}
	for _, opt := range options {
		opt(s)
	}

	// Bootstrap: ensure the super admin and demo services exist
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// CleanupRevokedTokens drops revocations of tokens that have expired anyway
func (s *Server) CleanupRevokedTokens() {
	s.tokens.CleanupRevokedTokens()
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logger.Debug().Msgf("[%s] %s", colourMethod(parts[0]), parts[1])
		} else {
			s.logger.Debug().Msgf("[%s] %s", colourMethod(""), parts[0])
		}
	}
}
