package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/viteviteapp/apimodel"
	"github.com/jrsteele09/viteviteapp/credentials"
	"github.com/jrsteele09/viteviteapp/gateway"
)

const (
	routeLogin    = "/auth/login"
	routeRegister = "/auth/register"
	routeRefresh  = "/auth/refresh"
)

var _ gateway.Refresher = (*AuthClient)(nil)

// AuthClient calls the unauthenticated endpoints. It never goes through the
// gateway so a refresh exchange cannot itself trigger a refresh.
type AuthClient struct {
	baseURL string
	http    Doer
}

// NewAuthClient uses httpClient for every call; nil selects a client with a 15 second timeout
func NewAuthClient(baseURL string, httpClient Doer) *AuthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &AuthClient{baseURL: baseURL, http: httpClient}
}

func (c *AuthClient) Login(ctx context.Context, req apimodel.LoginRequest) (*apimodel.AuthResponse, error) {
	if err := apimodel.Validate(req); err != nil {
		return nil, err
	}
	var resp apimodel.AuthResponse
	if err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.baseURL, routeLogin), req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

func (c *AuthClient) Register(ctx context.Context, req apimodel.RegisterRequest) (*apimodel.AuthResponse, error) {
	if req.Role == "" {
		req.Role = string(credentials.RoleUser)
	}
	if err := apimodel.Validate(req); err != nil {
		return nil, err
	}
	var resp apimodel.AuthResponse
	if err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.baseURL, routeRegister), req, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp, nil
}

// Refresh implements gateway.Refresher
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (credentials.TokenPair, error) {
	req := apimodel.RefreshRequest{RefreshToken: refreshToken}
	if err := apimodel.Validate(req); err != nil {
		return credentials.TokenPair{}, err
	}
	var tokens apimodel.Tokens
	if err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.baseURL, routeRefresh), req, &tokens); err != nil {
		return credentials.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	if tokens.AccessToken == "" {
		return credentials.TokenPair{}, fmt.Errorf("refresh: empty access token")
	}
	return credentials.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}
