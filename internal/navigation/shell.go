package navigation

import (
	"fmt"
	"net/http"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/screens"
	"github.com/scholaris/scholaris/internal/shared"
)

// Shell resolves a request path against the route table and serves the
// matched screen behind its guard. Public routes are served unguarded.
type Shell struct {
	table    *access.RouteTable
	handlers map[string]http.Handler
	notFound http.HandlerFunc
}

// NewShell prebuilds one guarded handler per route. Routes naming an unknown
// screen fail here so a bad table stops the boot.
func NewShell(table *access.RouteTable, mw rbac.Middleware, renderer *screens.Renderer) (*Shell, error) {
	if table == nil {
		return nil, fmt.Errorf("navigation: route table required")
	}
	if mw.Denied == nil {
		mw.Denied = http.HandlerFunc(renderer.Denied)
	}
	handlers := make(map[string]http.Handler)
	for _, route := range table.Routes() {
		screen, err := renderer.Handler(route)
		if err != nil {
			return nil, fmt.Errorf("navigation: %w", err)
		}
		if route.Public() {
			handlers[route.Pattern()] = screen
			continue
		}
		handlers[route.Pattern()] = mw.Guard(route)(screen)
	}
	return &Shell{table: table, handlers: handlers, notFound: renderer.NotFound}, nil
}

// ServeHTTP implements http.Handler.
func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, ok := s.table.Resolve(r.URL.Path)
	if !ok {
		s.notFound(w, r)
		return
	}
	handler, ok := s.handlers[route.Pattern()]
	if !ok {
		s.notFound(w, r)
		return
	}
	handler.ServeHTTP(w, r)
}

// CheckResult is the JSON body of the access check endpoint.
type CheckResult struct {
	Path       string        `json:"path"`
	Route      string        `json:"route"`
	State      string        `json:"state"`
	Allow      bool          `json:"allow"`
	Reason     access.Reason `json:"reason"`
	Matched    bool          `json:"matched"`
	Permission string        `json:"permission,omitempty"`
	Granted    *bool         `json:"granted,omitempty"`
}

// Check answers GET /api/access/check?path=[&permission=] for the current
// session without rendering anything.
func (s *Shell) Check(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	target := query.Get("path")
	if target == "" {
		httpx.RespondError(w, httpx.Validation("path query parameter is required"))
		return
	}
	route, ok := s.table.Resolve(target)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: no route matches path", httpx.ErrNotFound))
		return
	}
	identity := shared.SessionFromContext(r.Context()).Identity()
	result := CheckResult{Path: target}
	if key := query.Get("permission"); key != "" {
		perm, err := access.ParsePermission(key)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		granted := identity.Authenticated && access.Allows(identity.Role, perm)
		result.Permission = perm.String()
		result.Granted = &granted
	}
	var guard access.Guard
	outcome := guard.Check(identity, route)
	result.Matched = !route.NotFound()
	result.Route = route.Pattern()
	result.State = outcome.State.String()
	result.Allow = outcome.Decision.Allow
	result.Reason = outcome.Decision.Reason
	httpx.JSON(w, http.StatusOK, result)
}
