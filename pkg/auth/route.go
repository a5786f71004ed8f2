package auth

// Route is an application path.
type Route string

const (
	RouteHome      Route = "/"
	RouteAuth      Route = "/auth"
	RouteDashboard Route = "/dashboard"
	RouteAdmin     Route = "/admin"
	RoutePredict   Route = "/predict"
	RouteAnalysis  Route = "/analysis"
	RoutePayment   Route = "/payment"
)

// Routes lists every known route.
func Routes() []Route {
	return []Route{RouteHome, RouteAuth, RouteDashboard, RouteAdmin, RoutePredict, RouteAnalysis, RoutePayment}
}

// ResolveLandingRoute returns where a user lands after authenticating:
// superadmins go to the admin page, other sessions to the dashboard, and no
// session to the auth page.
func ResolveLandingRoute(s Session) Route {
	switch {
	case !s.Authenticated():
		return RouteAuth
	case s.Role == RoleSuperAdmin:
		return RouteAdmin
	default:
		return RouteDashboard
	}
}

// Guard decides whether s may open route. When it may not, the returned route
// is the redirect target. Public routes are always allowed.
func Guard(route Route, s Session) (Route, bool) {
	switch route {
	case RouteAdmin:
		if !s.Authenticated() {
			return RouteAuth, false
		}
		if s.Role != RoleSuperAdmin {
			return RouteDashboard, false
		}
	case RouteDashboard, RoutePredict, RouteAnalysis, RoutePayment:
		if !s.Authenticated() {
			return RouteAuth, false
		}
	case RouteAuth:
		if s.Authenticated() {
			return ResolveLandingRoute(s), false
		}
	}
	return route, true
}
