package queue

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ServiceSummary is a service with its current queue length
type ServiceSummary struct {
	Service
	QueueLength int
}

// TicketView is a ticket as its holder sees it
type TicketView struct {
	Ticket
	ServiceName string
	Standing
}

// Manager applies queue rules on top of a Repo. All mutations are serialised.
type Manager struct {
	repo Repo
	mu   sync.Mutex
}

func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) CreateService(service Service) (*ServiceSummary, error) {
	service.Name = strings.TrimSpace(service.Name)
	if service.Name == "" {
		return nil, fmt.Errorf("%w: service name is required", apperrors.ErrInvalidRequest)
	}
	if service.AvgMinutes < 0 {
		return nil, fmt.Errorf("%w: average minutes cannot be negative", apperrors.ErrInvalidRequest)
	}
	service.ID = ""
	service.CreatedAt = NowTimeFunc()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.repo.UpsertService(&service); err != nil {
		return nil, fmt.Errorf("Manager.CreateService Upsert: %w", err)
	}
	return &ServiceSummary{Service: service}, nil
}

// SetOpen opens or closes a service to new tickets. Existing tickets stay queued.
func (m *Manager) SetOpen(serviceID string, open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	service, err := m.repo.GetService(serviceID)
	if err != nil {
		return err
	}
	updated := *service
	updated.Open = open
	return m.repo.UpsertService(&updated)
}

func (m *Manager) DeleteService(serviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.DeleteService(serviceID)
}

func (m *Manager) ListServices() ([]ServiceSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	services, err := m.repo.ListServices()
	if err != nil {
		return nil, err
	}
	summaries := make([]ServiceSummary, 0, len(services))
	for _, s := range services {
		summary, err := m.summary(s)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (m *Manager) GetService(serviceID string) (*ServiceSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	service, err := m.repo.GetService(serviceID)
	if err != nil {
		return nil, err
	}
	return m.summary(service)
}

// TakeTicket queues the user for a service. A user holds at most one active
// ticket per service.
func (m *Manager) TakeTicket(userID, serviceID string) (*TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	service, err := m.repo.GetService(serviceID)
	if err != nil {
		return nil, err
	}
	if !service.Open {
		return nil, apperrors.ErrServiceClosed
	}

	held, err := m.repo.ListUserTickets(userID)
	if err != nil {
		return nil, err
	}
	for _, t := range held {
		if t.ServiceID == serviceID && t.Status.Active() {
			return nil, fmt.Errorf("%w: ticket %d already active for %s", apperrors.ErrConflict, t.Number, service.Name)
		}
	}

	number, err := m.repo.NextNumber(serviceID)
	if err != nil {
		return nil, err
	}
	now := NowTimeFunc()
	ticket := &Ticket{
		ServiceID: serviceID,
		UserID:    userID,
		Number:    number,
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.repo.UpsertTicket(ticket); err != nil {
		return nil, fmt.Errorf("Manager.TakeTicket Upsert: %w", err)
	}
	return m.view(ticket)
}

// GetTicket returns the ticket if userID holds it or admin is set
func (m *Manager) GetTicket(userID, ticketID string, admin bool) (*TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, err := m.owned(userID, ticketID, admin)
	if err != nil {
		return nil, err
	}
	return m.view(ticket)
}

func (m *Manager) CancelTicket(userID, ticketID string, admin bool) (*TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, err := m.owned(userID, ticketID, admin)
	if err != nil {
		return nil, err
	}
	if !ticket.Status.Active() {
		return nil, apperrors.ErrTicketClosed
	}
	return m.transition(ticket, StatusCancelled)
}

func (m *Manager) MyTickets(userID string) ([]TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickets, err := m.repo.ListUserTickets(userID)
	if err != nil {
		return nil, err
	}
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		v, err := m.view(t)
		if err != nil {
			// tickets of deleted services are dropped with the service
			continue
		}
		views = append(views, *v)
	}
	return views, nil
}

// CallNext marks the ticket at the counter served and calls the next waiting one
func (m *Manager) CallNext(serviceID string) (*TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.repo.GetService(serviceID); err != nil {
		return nil, err
	}
	tickets, err := m.repo.ListTickets(serviceID)
	if err != nil {
		return nil, err
	}

	var next *Ticket
	for _, t := range tickets {
		switch {
		case t.Status == StatusCalled:
			if _, err := m.transition(t, StatusServed); err != nil {
				return nil, err
			}
		case t.Status == StatusWaiting && next == nil:
			next = t
		}
	}
	if next == nil {
		return nil, fmt.Errorf("%w: no waiting tickets", apperrors.ErrTicketNotFound)
	}
	return m.transition(next, StatusCalled)
}

func (m *Manager) owned(userID, ticketID string, admin bool) (*Ticket, error) {
	ticket, err := m.repo.GetTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID && !admin {
		// do not reveal tickets of other users
		return nil, apperrors.ErrTicketNotFound
	}
	return ticket, nil
}

func (m *Manager) transition(ticket *Ticket, status Status) (*TicketView, error) {
	updated := *ticket
	updated.Status = status
	updated.UpdatedAt = NowTimeFunc()
	if err := m.repo.UpsertTicket(&updated); err != nil {
		return nil, fmt.Errorf("Manager.transition Upsert: %w", err)
	}
	return m.view(&updated)
}

func (m *Manager) summary(service *Service) (*ServiceSummary, error) {
	tickets, err := m.repo.ListTickets(service.ID)
	if err != nil {
		return nil, err
	}
	length := 0
	for _, t := range tickets {
		if t.Status == StatusWaiting {
			length++
		}
	}
	return &ServiceSummary{Service: *service, QueueLength: length}, nil
}

func (m *Manager) view(ticket *Ticket) (*TicketView, error) {
	service, err := m.repo.GetService(ticket.ServiceID)
	if err != nil {
		return nil, err
	}
	view := &TicketView{Ticket: *ticket, ServiceName: service.Name}
	if ticket.Status != StatusWaiting {
		return view, nil
	}

	tickets, err := m.repo.ListTickets(ticket.ServiceID)
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		if t.Status == StatusWaiting && t.Number < ticket.Number {
			view.Ahead++
		}
	}
	view.Position = view.Ahead + 1
	view.EstimatedWaitMinutes = view.Position * service.AvgMinutes
	return view, nil
}
