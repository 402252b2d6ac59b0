// Package api is the typed client for the ViteVite queue backend.
//
// AuthClient covers login, registration and the refresh exchange. Client covers
// the queue endpoints and is meant to sit on top of a gateway.Gateway so every
// call carries the stored bearer token.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/viteviteapp/apimodel"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/internal/utils"
)

const (
	routeServices = "/services"
	routeTickets  = "/tickets"
	routeMyTicket = "/tickets/mine"
	routeUsers    = "/admin/users"
	routeAdminSvc = "/admin/services"
	routeMe       = "/auth/me"
	routeLogout   = "/auth/logout"
)

// AdminGate answers whether admin screens should be offered. credentials.Store satisfies it.
type AdminGate interface {
	IsAdmin(ctx context.Context) bool
}

type Option func(*Client)

// WithAdminGate hides admin calls from users the gate rejects
func WithAdminGate(gate AdminGate) Option {
	return func(c *Client) {
		c.gate = gate
	}
}

type Client struct {
	baseURL string
	doer    Doer
	gate    AdminGate
}

func New(baseURL string, doer Doer, options ...Option) *Client {
	c := &Client{baseURL: baseURL, doer: doer}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) ListServices(ctx context.Context) ([]apimodel.Service, error) {
	var services []apimodel.Service
	if err := doJSON(ctx, c.doer, http.MethodGet, joinURL(c.baseURL, routeServices), nil, &services); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*apimodel.Service, error) {
	var service apimodel.Service
	if err := doJSON(ctx, c.doer, http.MethodGet, c.url(routeServices, id), nil, &service); err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, err)
	}
	return &service, nil
}

func (c *Client) TakeTicket(ctx context.Context, serviceID string) (*apimodel.Ticket, error) {
	req := apimodel.TakeTicketRequest{ServiceID: serviceID}
	if err := apimodel.Validate(req); err != nil {
		return nil, err
	}
	var ticket apimodel.Ticket
	if err := doJSON(ctx, c.doer, http.MethodPost, joinURL(c.baseURL, routeTickets), req, &ticket); err != nil {
		return nil, fmt.Errorf("take ticket for %s: %w", serviceID, err)
	}
	return &ticket, nil
}

func (c *Client) GetTicket(ctx context.Context, id string) (*apimodel.Ticket, error) {
	var ticket apimodel.Ticket
	if err := doJSON(ctx, c.doer, http.MethodGet, c.url(routeTickets, id), nil, &ticket); err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return &ticket, nil
}

func (c *Client) CancelTicket(ctx context.Context, id string) (*apimodel.Ticket, error) {
	var ticket apimodel.Ticket
	if err := doJSON(ctx, c.doer, http.MethodDelete, c.url(routeTickets, id), nil, &ticket); err != nil {
		return nil, fmt.Errorf("cancel ticket %s: %w", id, err)
	}
	return &ticket, nil
}

// MyTickets lists the caller's tickets, newest first
func (c *Client) MyTickets(ctx context.Context) ([]apimodel.Ticket, error) {
	var tickets []apimodel.Ticket
	if err := doJSON(ctx, c.doer, http.MethodGet, joinURL(c.baseURL, routeMyTicket), nil, &tickets); err != nil {
		return nil, fmt.Errorf("list my tickets: %w", err)
	}
	return tickets, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]apimodel.User, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	var users []apimodel.User
	if err := doJSON(ctx, c.doer, http.MethodGet, joinURL(c.baseURL, routeUsers), nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (c *Client) CreateService(ctx context.Context, service apimodel.Service) (*apimodel.Service, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := apimodel.Validate(service); err != nil {
		return nil, err
	}
	var created apimodel.Service
	if err := doJSON(ctx, c.doer, http.MethodPost, joinURL(c.baseURL, routeAdminSvc), service, &created); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &created, nil
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	if err := doJSON(ctx, c.doer, http.MethodDelete, c.url(routeAdminSvc, id), nil, nil); err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	return nil
}

// CallNext advances a service queue and returns the ticket now being called
func (c *Client) CallNext(ctx context.Context, serviceID string) (*apimodel.Ticket, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	var ticket apimodel.Ticket
	if err := doJSON(ctx, c.doer, http.MethodPost, c.url(routeAdminSvc, serviceID, "next"), nil, &ticket); err != nil {
		return nil, fmt.Errorf("call next for %s: %w", serviceID, err)
	}
	return &ticket, nil
}

// SetServiceOpen opens or closes a service to new tickets
func (c *Client) SetServiceOpen(ctx context.Context, serviceID string, open bool) (*apimodel.Service, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	var service apimodel.Service
	if err := doJSON(ctx, c.doer, http.MethodPatch, c.url(routeAdminSvc, serviceID), apimodel.UpdateServiceRequest{Open: utils.Ptr(open)}, &service); err != nil {
		return nil, fmt.Errorf("update service %s: %w", serviceID, err)
	}
	return &service, nil
}

// Me returns the caller as the backend sees it
func (c *Client) Me(ctx context.Context) (*apimodel.User, error) {
	var user apimodel.User
	if err := doJSON(ctx, c.doer, http.MethodGet, joinURL(c.baseURL, routeMe), nil, &user); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &user, nil
}

// Logout asks the backend to revoke the current tokens
func (c *Client) Logout(ctx context.Context) error {
	if err := doJSON(ctx, c.doer, http.MethodPost, joinURL(c.baseURL, routeLogout), nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Client) requireAdmin(ctx context.Context) error {
	if c.gate != nil && !c.gate.IsAdmin(ctx) {
		return apperrors.ErrNotAdmin
	}
	return nil
}

func (c *Client) url(route string, segments ...string) string {
	u := joinURL(c.baseURL, route)
	for _, s := range segments {
		u += "/" + url.PathEscape(s)
	}
	return u
}
