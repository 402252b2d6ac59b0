package fakequeuerepo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/queue"
)

var _ queue.Repo = (*FakeQueueRepo)(nil)

type FakeQueueRepo struct {
	services map[string]*queue.Service
	tickets  map[string]*queue.Ticket
	counters map[string]int // service ID to last issued number
	lock     sync.RWMutex
}

func NewFakeQueueRepo() queue.Repo {
	return &FakeQueueRepo{
		services: make(map[string]*queue.Service),
		tickets:  make(map[string]*queue.Ticket),
		counters: make(map[string]int),
	}
}

func (r *FakeQueueRepo) UpsertService(service *queue.Service) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if service.ID == "" {
		service.ID = uuid.New().String()
	}
	r.services[service.ID] = service
	return nil
}

func (r *FakeQueueRepo) GetService(id string) (*queue.Service, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	service, ok := r.services[id]
	if !ok {
		return nil, apperrors.ErrServiceNotFound
	}
	return service, nil
}

func (r *FakeQueueRepo) DeleteService(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.services[id]; !ok {
		return apperrors.ErrServiceNotFound
	}
	delete(r.services, id)
	delete(r.counters, id)
	for ticketID, ticket := range r.tickets {
		if ticket.ServiceID == id {
			delete(r.tickets, ticketID)
		}
	}
	return nil
}

func (r *FakeQueueRepo) ListServices() ([]*queue.Service, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	services := make([]*queue.Service, 0, len(r.services))
	for _, s := range r.services {
		services = append(services, s)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].Name < services[j].Name
	})
	return services, nil
}

func (r *FakeQueueRepo) NextNumber(serviceID string) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.services[serviceID]; !ok {
		return 0, apperrors.ErrServiceNotFound
	}
	r.counters[serviceID]++
	return r.counters[serviceID], nil
}

func (r *FakeQueueRepo) UpsertTicket(ticket *queue.Ticket) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *FakeQueueRepo) GetTicket(id string) (*queue.Ticket, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	return ticket, nil
}

func (r *FakeQueueRepo) ListTickets(serviceID string) ([]*queue.Ticket, error) {
	return r.filter(func(t *queue.Ticket) bool { return t.ServiceID == serviceID }, func(a, b *queue.Ticket) bool {
		return a.Number < b.Number
	}), nil
}

func (r *FakeQueueRepo) ListUserTickets(userID string) ([]*queue.Ticket, error) {
	return r.filter(func(t *queue.Ticket) bool { return t.UserID == userID }, func(a, b *queue.Ticket) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

func (r *FakeQueueRepo) filter(keep func(*queue.Ticket) bool, less func(a, b *queue.Ticket) bool) []*queue.Ticket {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tickets := make([]*queue.Ticket, 0)
	for _, t := range r.tickets {
		if keep(t) {
			tickets = append(tickets, t)
		}
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return less(tickets[i], tickets[j])
	})
	return tickets
}
