package access

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	// NotFoundPattern matches any path no other route claims.
	NotFoundPattern = "*"
	wildcardSuffix  = "/*"
)

// RouteDescriptor is one row of the static route table.
//
// Roles overrides Category; when both are empty on a guarded route the route
// denies everyone.
type RouteDescriptor struct {
	Pattern  string
	Roles    []Role
	Category Category
	Module   Module
	Screen   string
	Public   bool
}

// Route is a validated, immutable route descriptor.
type Route struct {
	pattern string
	prefix  string
	allowed RoleSet
	module  Module
	screen  string
	public  bool
}

// NewRoute validates desc and freezes it into a Route.
func NewRoute(desc RouteDescriptor) (Route, error) {
	pattern := strings.TrimSpace(desc.Pattern)
	if pattern == "" {
		return Route{}, fmt.Errorf("%w: empty pattern", ErrInvalidRoute)
	}
	route := Route{screen: desc.Screen, public: desc.Public}
	switch {
	case pattern == NotFoundPattern:
		route.pattern = NotFoundPattern
	case strings.HasSuffix(pattern, wildcardSuffix):
		route.prefix = cleanPath(strings.TrimSuffix(pattern, wildcardSuffix))
		route.pattern = strings.TrimSuffix(route.prefix, "/") + wildcardSuffix
	default:
		if strings.Contains(pattern, "*") {
			return Route{}, fmt.Errorf("%w: %q: wildcard only allowed as trailing segment", ErrInvalidRoute, pattern)
		}
		route.pattern = cleanPath(pattern)
	}
	if desc.Module != "" {
		if !desc.Module.Valid() {
			return Route{}, fmt.Errorf("route %s: %w: %q", route.pattern, ErrUnknownModule, string(desc.Module))
		}
		route.module = desc.Module
	}
	if desc.Public {
		return route, nil
	}
	switch {
	case len(desc.Roles) > 0:
		set, err := NewRoleSet(desc.Roles...)
		if err != nil {
			return Route{}, fmt.Errorf("route %s: %w", route.pattern, err)
		}
		route.allowed = set
	case desc.Category != "":
		set, err := DefaultRolesFor(desc.Category)
		if err != nil {
			return Route{}, fmt.Errorf("route %s: %w", route.pattern, err)
		}
		route.allowed = set
	}
	return route, nil
}

// Pattern returns the normalized path pattern.
func (r Route) Pattern() string { return r.pattern }

// AllowedRoles returns the roles the route admits.
func (r Route) AllowedRoles() RoleSet { return r.allowed }

// Module returns the required module, or "" when none.
func (r Route) Module() Module { return r.module }

// Screen returns the screen key rendered by the route.
func (r Route) Screen() string { return r.screen }

// Public reports whether the route is rendered without a guard.
func (r Route) Public() bool { return r.public }

// Wildcard reports whether the route is a trailing catch-all.
func (r Route) Wildcard() bool { return r.prefix != "" }

// NotFound reports whether the route is the global not-found entry.
func (r Route) NotFound() bool { return r.pattern == NotFoundPattern }

// RouteTable maps paths to routes. It is immutable once built.
type RouteTable struct {
	routes    []Route
	exact     map[string]Route
	wildcards []Route
	notFound  *Route
}

// NewRouteTable validates every descriptor and builds the lookup structures.
func NewRouteTable(descs ...RouteDescriptor) (*RouteTable, error) {
	t := &RouteTable{exact: make(map[string]Route, len(descs))}
	seen := make(map[string]struct{}, len(descs))
	for _, desc := range descs {
		route, err := NewRoute(desc)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[route.pattern]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, route.pattern)
		}
		seen[route.pattern] = struct{}{}
		t.routes = append(t.routes, route)
		switch {
		case route.NotFound():
			r := route
			t.notFound = &r
		case route.Wildcard():
			t.wildcards = append(t.wildcards, route)
		default:
			t.exact[route.pattern] = route
		}
	}
	sort.SliceStable(t.wildcards, func(i, j int) bool {
		return len(t.wildcards[i].prefix) > len(t.wildcards[j].prefix)
	})
	return t, nil
}

// Resolve returns the most specific route for p. Exact patterns beat
// wildcards, longer wildcard prefixes beat shorter ones, and the not-found
// entry only matches when nothing else does.
func (t *RouteTable) Resolve(p string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	clean := cleanPath(p)
	if route, ok := t.exact[clean]; ok {
		return route, true
	}
	for _, route := range t.wildcards {
		if matchesPrefix(clean, route.prefix) {
			return route, true
		}
	}
	if t.notFound != nil {
		return *t.notFound, true
	}
	return Route{}, false
}

// Routes lists routes in declaration order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Lint reports guarded routes that will deny everyone.
func (t *RouteTable) Lint() []string {
	var issues []string
	for _, r := range t.routes {
		if !r.public && r.allowed.Empty() {
			issues = append(issues, fmt.Sprintf("route %s has no allowed roles and denies every session", r.pattern))
		}
	}
	return issues
}

func matchesPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
