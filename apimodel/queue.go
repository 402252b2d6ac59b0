package apimodel

import "time"

// Service is a counter or office citizens can queue for
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
	Open        bool   `json:"open"`
	AvgMinutes  int    `json:"avg_minutes" validate:"gte=0"`
	QueueLength int    `json:"queue_length"`
}

type TicketStatus string

const (
	TicketWaiting   TicketStatus = "waiting"
	TicketCalled    TicketStatus = "called"
	TicketServed    TicketStatus = "served"
	TicketCancelled TicketStatus = "cancelled"
	TicketExpired   TicketStatus = "expired"
)

// Terminal reports whether the ticket can no longer change
func (s TicketStatus) Terminal() bool {
	switch s {
	case TicketServed, TicketCancelled, TicketExpired:
		return true
	}
	return false
}

// Ticket is a virtual place in a service queue
type Ticket struct {
	ID                   string       `json:"id"`
	ServiceID            string       `json:"service_id"`
	ServiceName          string       `json:"service_name,omitempty"`
	Number               int          `json:"number"`
	Status               TicketStatus `json:"status"`
	Position             int          `json:"position"`
	EstimatedWaitMinutes int          `json:"estimated_wait_minutes"`
	CreatedAt            time.Time    `json:"created_at"`
}

// TakeTicketRequest is the body of POST /tickets
type TakeTicketRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
}

// UpdateServiceRequest is the body of PATCH /admin/services/{id}
type UpdateServiceRequest struct {
	Open *bool `json:"open" validate:"required"`
}
