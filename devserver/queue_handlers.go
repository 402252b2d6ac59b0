package devserver

import (
	"net/http"

	"github.com/jrsteele09/viteviteapp/apimodel"
)

func (s *Server) ListServicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := s.queue.ListServices()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		services := make([]apimodel.Service, 0, len(summaries))
		for i := range summaries {
			services = append(services, serviceModel(&summaries[i]))
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func (s *Server) GetServiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.queue.GetService(r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, serviceModel(summary))
	}
}

func (s *Server) TakeTicketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.TakeTicketRequest
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		ticket, err := s.queue.TakeTicket(currentUser(r).ID, req.ServiceID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ticketModel(ticket))
	}
}

func (s *Server) GetTicketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		ticket, err := s.queue.GetTicket(user.ID, r.PathValue("id"), user.IsAdmin())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketModel(ticket))
	}
}

func (s *Server) CancelTicketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		ticket, err := s.queue.CancelTicket(user.ID, r.PathValue("id"), user.IsAdmin())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketModel(ticket))
	}
}

func (s *Server) MyTicketsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := s.queue.MyTickets(currentUser(r).ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		tickets := make([]apimodel.Ticket, 0, len(views))
		for i := range views {
			tickets = append(tickets, ticketModel(&views[i]))
		}
		writeJSON(w, http.StatusOK, tickets)
	}
}
