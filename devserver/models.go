package devserver

import (
	"github.com/jrsteele09/viteviteapp/apimodel"
	"github.com/jrsteele09/viteviteapp/queue"
	"github.com/jrsteele09/viteviteapp/token"
	"github.com/jrsteele09/viteviteapp/users"
)

func userModel(u *users.User) apimodel.User {
	return apimodel.User{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		FullName: u.FullName,
		Phone:    u.Phone,
	}
}

func tokensModel(p *token.Pair) apimodel.Tokens {
	return apimodel.Tokens{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func serviceModel(s *queue.ServiceSummary) apimodel.Service {
	return apimodel.Service{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Location:    s.Location,
		Open:        s.Open,
		AvgMinutes:  s.AvgMinutes,
		QueueLength: s.QueueLength,
	}
}

func ticketModel(t *queue.TicketView) apimodel.Ticket {
	return apimodel.Ticket{
		ID:                   t.ID,
		ServiceID:            t.ServiceID,
		ServiceName:          t.ServiceName,
		Number:               t.Number,
		Status:               apimodel.TicketStatus(t.Status),
		Position:             t.Position,
		EstimatedWaitMinutes: t.EstimatedWaitMinutes,
		CreatedAt:            t.CreatedAt,
	}
}
