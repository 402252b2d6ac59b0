package api

import (
	"context"
	"time"

	"github.com/jrsteele09/viteviteapp/apimodel"
)

// DefaultPollInterval is used when WatchTicket is given a non-positive interval
const DefaultPollInterval = 10 * time.Second

// TicketUpdate is one poll result. Err is set on the final update when polling failed.
type TicketUpdate struct {
	Ticket *apimodel.Ticket
	Err    error
}

// WatchTicket polls the ticket every interval and sends each snapshot. The
// channel closes after a terminal status, after the first error, or when ctx
// is done. Polls are not retried.
func (c *Client) WatchTicket(ctx context.Context, id string, interval time.Duration) <-chan TicketUpdate {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	updates := make(chan TicketUpdate)
	go func() {
		defer close(updates)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			ticket, err := c.GetTicket(ctx, id)
			if ctx.Err() != nil {
				return
			}
			select {
			case updates <- TicketUpdate{Ticket: ticket, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil || ticket.Status.Terminal() {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates
}
