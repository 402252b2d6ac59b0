package devserver

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix+"/", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// QUEUE
	s.RegisterRouteHandler("GET "+RouteServices, ChainMiddleware(s.ListServicesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteService, ChainMiddleware(s.GetServiceHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteTickets, ChainMiddleware(s.TakeTicketHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteMyTickets, ChainMiddleware(s.MyTicketsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteTicket, ChainMiddleware(s.GetTicketHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteTicket, ChainMiddleware(s.CancelTicketHandler(), s.APIMiddleware(s.RequireAuth())...))

	// ADMIN
	s.RegisterRouteHandler("GET "+RouteAdminUsers, ChainMiddleware(s.AdminUsersListHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminServices, ChainMiddleware(s.AdminCreateServiceHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("PATCH "+RouteAdminService, ChainMiddleware(s.AdminUpdateServiceHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("DELETE "+RouteAdminService, ChainMiddleware(s.AdminDeleteServiceHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminServiceNext, ChainMiddleware(s.AdminCallNextHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers CORS preflights; the headers are set by CorsMiddleware
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
