package queue

type Repo interface {
	UpsertService(service *Service) error
	GetService(id string) (*Service, error)
	DeleteService(id string) error
	ListServices() ([]*Service, error)

	// NextNumber reserves the next ticket number of a service
	NextNumber(serviceID string) (int, error)
	UpsertTicket(ticket *Ticket) error
	GetTicket(id string) (*Ticket, error)
	// ListTickets returns a service's tickets ordered by number
	ListTickets(serviceID string) ([]*Ticket, error)
	// ListUserTickets returns a user's tickets, newest first
	ListUserTickets(userID string) ([]*Ticket, error)
}
