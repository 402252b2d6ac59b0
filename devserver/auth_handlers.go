package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/viteviteapp/apimodel"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/users"
)

// LoginHandler exchanges email and password for a token pair
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}

		user, err := s.users.GetByEmail(req.Email)
		if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if user.Blocked {
			writeError(w, http.StatusForbidden, "account is blocked")
			return
		}

		updated := *user
		updated.LastLogin = time.Now()
		if err := s.users.Upsert(&updated); err != nil {
			s.fail(w, r, err)
			return
		}

		pair, err := s.tokens.Issue(&updated)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apimodel.AuthResponse{Tokens: tokensModel(pair), User: userModel(&updated)})
	}
}

// RegisterHandler creates an account and signs it in. Anyone may register as a
// user; admin and super accounts can only be created by a super user.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		role := users.RoleType(req.Role)
		if role == "" {
			role = users.RoleUser
		}
		if role != users.RoleUser && !s.callerIsSuper(r) {
			writeError(w, http.StatusForbidden, "only a super user can register "+string(role)+" accounts")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := s.users.GetByEmail(req.Email); err == nil {
			s.fail(w, r, apperrors.ErrUserExists)
			return
		}

		passwordHash, err := users.HashPassword(req.Password)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		now := time.Now()
		user := &users.User{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: passwordHash,
			FullName:     strings.TrimSpace(req.FullName),
			Phone:        req.Phone,
			Role:         role,
			DateJoined:   now,
			LastLogin:    now,
		}
		if err := s.users.Upsert(user); err != nil {
			s.fail(w, r, err)
			return
		}

		pair, err := s.tokens.Issue(user)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("user registered")
		writeJSON(w, http.StatusCreated, apimodel.AuthResponse{Tokens: tokensModel(pair), User: userModel(user)})
	}
}

// RefreshHandler rotates a refresh token. The body is the new token pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.RefreshRequest
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		pair, _, err := s.tokens.Refresh(req.RefreshToken)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokensModel(pair))
	}
}

// LogoutHandler revokes the presented access token and the user's refresh token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, _ := r.Context().Value(ContextKeyToken).(string)
		if err := s.tokens.Revoke(rawToken); err != nil {
			s.fail(w, r, err)
			return
		}
		if claims := currentClaims(r); claims != nil {
			s.logger.Debug().Str("jti", claims.Jti).Str("sub", claims.Sub).Msg("token revoked")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler returns the authenticated user as the backend sees it
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userModel(currentUser(r)))
	}
}

func (s *Server) callerIsSuper(r *http.Request) bool {
	rawToken, ok := bearerToken(r)
	if !ok {
		return false
	}
	claims, err := s.tokens.Introspect(rawToken)
	if err != nil {
		return false
	}
	caller, err := s.users.GetByID(claims.Sub)
	return err == nil && !caller.Blocked && caller.IsSuper()
}
