// Package queue models the services citizens queue for and the virtual
// tickets that hold their place.
package queue

import "time"

type Service struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"` // e.g. health, civil registry, transport
	Location    string    `json:"location,omitempty"`
	Open        bool      `json:"open"`
	AvgMinutes  int       `json:"avg_minutes"` // Average handling time per ticket
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCalled    Status = "called"
	StatusServed    Status = "served"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Active reports whether the ticket still occupies the queue
func (s Status) Active() bool {
	return s == StatusWaiting || s == StatusCalled
}

type Ticket struct {
	ID        string    `json:"id,omitempty"`
	ServiceID string    `json:"service_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Number    int       `json:"number"` // Sequential per service, shown at the counter
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Standing is a ticket's place in its service queue with the naive wait estimate
type Standing struct {
	Ahead                int // Waiting tickets in front
	Position             int // 1 for the next ticket to be called, 0 when not waiting
	EstimatedWaitMinutes int
}
