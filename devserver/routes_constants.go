package devserver

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteAPIPrefix = "/api"

	// Auth Routes
	RouteAuthLogin    = RouteAPIPrefix + "/auth/login"
	RouteAuthRegister = RouteAPIPrefix + "/auth/register"
	RouteAuthRefresh  = RouteAPIPrefix + "/auth/refresh"
	RouteAuthLogout   = RouteAPIPrefix + "/auth/logout"
	RouteAuthMe       = RouteAPIPrefix + "/auth/me"

	// Queue Routes
	RouteServices  = RouteAPIPrefix + "/services"
	RouteService   = RouteAPIPrefix + "/services/{id}"
	RouteTickets   = RouteAPIPrefix + "/tickets"
	RouteTicket    = RouteAPIPrefix + "/tickets/{id}"
	RouteMyTickets = RouteAPIPrefix + "/tickets/mine"

	// RouteTicketsPrefix is RouteTicket without its id segment
	RouteTicketsPrefix = RouteAPIPrefix + "/tickets/"

	// Admin Routes
	RouteAdminUsers       = RouteAPIPrefix + "/admin/users"
	RouteAdminServices    = RouteAPIPrefix + "/admin/services"
	RouteAdminService     = RouteAPIPrefix + "/admin/services/{id}"
	RouteAdminServiceNext = RouteAPIPrefix + "/admin/services/{id}/next"

	RouteHealth = "/healthz"
)
