package audithttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/shared"
)

const (
	timelinePath = "/audit/access"
	exportPath   = "/audit/access/export.csv"
	rateLimit    = 10
	rateWindow   = time.Minute
)

// MountRoutes registers the timeline and its CSV export.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Guard(h.route))
		r.With(h.rbac.RequireAny(access.PermAuditView)).Get(timelinePath, h.handleTimeline)
		r.Group(func(gr chi.Router) {
			gr.Use(h.rbac.RequireAll(access.PermAuditView, access.PermAuditExport))
			gr.Use(limiter)
			gr.Get(exportPath, h.handleExport)
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
