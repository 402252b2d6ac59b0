package devserver

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/viteviteapp/apimodel"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/internal/utils"
	"github.com/jrsteele09/viteviteapp/queue"
)

const defaultPageSize = 100

// AdminUsersListHandler lists users, paged with the offset and limit query parameters
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		limit, err := queryInt(r, "limit", defaultPageSize)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		list, err := s.users.List(offset, limit)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		result := make([]apimodel.User, 0, len(list))
		for _, u := range list {
			result = append(result, userModel(u))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) AdminCreateServiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.Service
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		created, err := s.queue.CreateService(queue.Service{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Location:    req.Location,
			Open:        req.Open,
			AvgMinutes:  req.AvgMinutes,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.logger.Info().Str("service", created.Name).Str("by", currentUser(r).Email).Msg("service created")
		writeJSON(w, http.StatusCreated, serviceModel(created))
	}
}

// AdminUpdateServiceHandler opens or closes a service
func (s *Server) AdminUpdateServiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.UpdateServiceRequest
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		id := r.PathValue("id")
		if err := s.queue.SetOpen(id, utils.Value(req.Open)); err != nil {
			s.fail(w, r, err)
			return
		}
		summary, err := s.queue.GetService(id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, serviceModel(summary))
	}
}

func (s *Server) AdminDeleteServiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.queue.DeleteService(r.PathValue("id")); err != nil {
			s.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminCallNextHandler serves the ticket at the counter and calls the next one
func (s *Server) AdminCallNextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket, err := s.queue.CallNext(r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketModel(ticket))
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s must be a non-negative integer", name)
	}
	return v, nil
}
