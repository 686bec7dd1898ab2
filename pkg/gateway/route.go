package gateway

import (
	"net/http"
	"strings"
)

// Route identifies the handler a request dispatches to.
type Route int

const (
	RouteUnmatched Route = iota
	RouteModels
	RoutePreflight
	RouteCompletion
)

// RouteOf applies the dispatch rule in order: GET with a "/models" path
// lists models, OPTIONS answers CORS preflight without body parsing, any
// POST is a completion (the payload shape, not the path, selects the
// translation), and everything else is unmatched.
func RouteOf(method, path string) Route {
	switch {
	case method == http.MethodGet && strings.Contains(path, "/models"):
		return RouteModels
	case method == http.MethodOptions:
		return RoutePreflight
	case method == http.MethodPost:
		return RouteCompletion
	default:
		return RouteUnmatched
	}
}

// String returns the route name used in logs and metric labels.
func (r Route) String() string {
	switch r {
	case RouteModels:
		return "models"
	case RoutePreflight:
		return "preflight"
	case RouteCompletion:
		return "completion"
	default:
		return "unmatched"
	}
}
