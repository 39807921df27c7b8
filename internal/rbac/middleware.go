package rbac

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/observability"
	"github.com/scholaris/scholaris/internal/shared"
)

// DefaultLoginPath is where unauthenticated navigations are sent.
const DefaultLoginPath = "/auth/login"

// Middleware wires route guards and permission checks for HTTP handlers.
type Middleware struct {
	Logger    *slog.Logger
	Auditor   shared.Auditor
	Metrics   *observability.Metrics
	Denied    http.Handler
	LoginPath string
}

// IdentityFromRequest returns the access snapshot for the request's session.
func IdentityFromRequest(r *http.Request) access.Session {
	return shared.SessionFromContext(r.Context()).Identity()
}

// Guard enforces route on next. Denials are rendered, never raised.
func (m Middleware) Guard(route access.Route) func(http.Handler) http.Handler {
	var guard access.Guard
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := guard.Check(IdentityFromRequest(r), route)
			m.observe(r, outcome)
			switch outcome.State {
			case access.GuardAuthorized:
				next.ServeHTTP(w, r)
			case access.GuardUnauthenticated:
				m.redirectToLogin(w, r)
			default:
				m.deny(w, r, outcome.Decision.Reason)
			}
		})
	}
}

// RequireAny ensures the current role holds at least one permission. A denial
// carries the reason of the first permission checked.
func (m Middleware) RequireAny(perms ...access.Permission) func(http.Handler) http.Handler {
	return m.requirePermissions(perms, func(identity access.Session) access.Decision {
		var first access.Decision
		for i, p := range perms {
			decision := access.EvaluatePermission(identity, p)
			if decision.Allow {
				return decision
			}
			if i == 0 {
				first = decision
			}
		}
		return first
	})
}

// RequireAll ensures the current role holds every permission. A denial carries
// the reason of the first permission missing.
func (m Middleware) RequireAll(perms ...access.Permission) func(http.Handler) http.Handler {
	return m.requirePermissions(perms, func(identity access.Session) access.Decision {
		var decision access.Decision
		for _, p := range perms {
			decision = access.EvaluatePermission(identity, p)
			if !decision.Allow {
				return decision
			}
		}
		return decision
	})
}

func (m Middleware) requirePermissions(perms []access.Permission, evaluate func(access.Session) access.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An empty requirement list is a wiring mistake; fail closed.
			if len(perms) == 0 {
				m.logger().Error("rbac permission gate without permissions", slog.String("path", r.URL.Path))
				m.deny(w, r, access.ReasonRoleDenied)
				return
			}
			identity := IdentityFromRequest(r)
			if !identity.Authenticated {
				m.redirectToLogin(w, r)
				return
			}
			decision := evaluate(identity)
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}
			m.logger().Warn("rbac permission denied",
				slog.String("path", r.URL.Path),
				slog.String("reason", string(decision.Reason)),
				slog.String("user", identity.UserID),
				slog.String("role", identity.Role.String()),
			)
			m.deny(w, r, decision.Reason)
		})
	}
}

func (m Middleware) observe(r *http.Request, outcome access.Outcome) {
	reason := string(outcome.Decision.Reason)
	m.Metrics.ObserveDecision(outcome.Route.Pattern(), reason)
	if outcome.State != access.GuardDenied {
		return
	}
	identity := IdentityFromRequest(r)
	m.logger().Warn("route guard denied",
		slog.String("path", r.URL.Path),
		slog.String("route", outcome.Route.Pattern()),
		slog.String("reason", reason),
		slog.String("user", identity.UserID),
		slog.String("role", identity.Role.String()),
	)
	if m.Auditor == nil {
		return
	}
	err := m.Auditor.Record(r.Context(), shared.AuditLog{
		ActorID: identity.UserID,
		Role:    identity.Role.String(),
		Action:  "access." + reason,
		Path:    r.URL.Path,
		Route:   outcome.Route.Pattern(),
		Module:  outcome.Route.Module().String(),
	})
	if err != nil {
		m.logger().Warn("record access audit", slog.Any("error", err))
	}
}

func (m Middleware) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginPath := m.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// deny renders the fixed Access-Denied view with the reason code. It never
// names the roles that would have been admitted.
func (m Middleware) deny(w http.ResponseWriter, r *http.Request, reason access.Reason) {
	r = r.WithContext(shared.ContextWithDenial(r.Context(), reason))
	if m.Denied != nil {
		m.Denied.ServeHTTP(w, r)
		return
	}
	http.Error(w, "Access Denied: "+string(reason), http.StatusForbidden)
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
