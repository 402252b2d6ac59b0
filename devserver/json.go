package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/viteviteapp/apimodel"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, apimodel.ErrorResponse{Detail: detail})
}

// decodeJSON reads a request body into v and runs its validate tags
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %w", apperrors.ErrInvalidRequest, err)
	}
	return apimodel.Validate(v)
}

// statusFor maps the shared sentinel errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrInvalidCredentials),
		apperrors.Is(err, apperrors.ErrInvalidToken),
		apperrors.Is(err, apperrors.ErrTokenExpired),
		apperrors.Is(err, apperrors.ErrInvalidRefreshToken),
		apperrors.Is(err, apperrors.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrUserNotFound),
		apperrors.Is(err, apperrors.ErrServiceNotFound),
		apperrors.Is(err, apperrors.ErrTicketNotFound),
		apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrUserExists),
		apperrors.Is(err, apperrors.ErrConflict),
		apperrors.Is(err, apperrors.ErrServiceClosed),
		apperrors.Is(err, apperrors.ErrTicketClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error. Internal errors are logged and not exposed.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		requestID, _ := r.Context().Value(ContextKeyRequestID).(string)
		s.logger.Error().Err(err).Str("request_id", requestID).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
