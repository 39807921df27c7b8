package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/internal/view"
)

// PermissionsHandler shows the signed-in role its own grants.
type PermissionsHandler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      Middleware
	route     access.Route
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac Middleware) (*PermissionsHandler, error) {
	route, err := access.NewRoute(access.RouteDescriptor{
		Pattern:  "/permissions",
		Category: access.CategoryDashboard,
		Screen:   "permissions",
	})
	if err != nil {
		return nil, err
	}
	return &PermissionsHandler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac, route: route}, nil
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Guard(h.route))
		r.Get("/", h.listGrants)
	})
}

func (h *PermissionsHandler) listGrants(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromRequest(r)
	grants := h.service.GrantsFor(identity.Role)
	h.render(w, r, "pages/permissions.html", map[string]any{"Grants": grants, "User": identity.UserID}, http.StatusOK)
}

func (h *PermissionsHandler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "My access", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Identity: IdentityFromRequest(r), Data: data}
	if err := h.templates.RenderStatus(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
