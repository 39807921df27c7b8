package screens

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/internal/view"
)

// Renderer draws catalog screens for the current session.
type Renderer struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewRenderer constructs a Renderer.
func NewRenderer(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger, templates: templates, csrf: csrf}
}

type screenPage struct {
	Screen    Screen
	Module    string
	Stats     []Stat
	Actions   []string
	CanExport bool
}

// Handler returns the handler rendering route's screen. An unknown screen key
// is a wiring error reported at construction.
func (r *Renderer) Handler(route access.Route) (http.Handler, error) {
	screen, ok := Lookup(route.Screen())
	if !ok {
		return nil, fmt.Errorf("screens: route %s: unknown screen %q", route.Pattern(), route.Screen())
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.serveScreen(w, req, screen, route.Module())
	}), nil
}

func (r *Renderer) serveScreen(w http.ResponseWriter, req *http.Request, screen Screen, module access.Module) {
	if screen.Redirect != "" {
		target := screen.Redirect
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}
		http.Redirect(w, req, target, http.StatusSeeOther)
		return
	}
	switch screen.Template {
	case templateAccessDenied:
		r.render(w, req, http.StatusOK, screen.Title, screen.Template, nil)
		return
	case templateNotFound:
		r.render(w, req, http.StatusNotFound, screen.Title, screen.Template, nil)
		return
	}
	identity := shared.SessionFromContext(req.Context()).Identity()
	page := screenPage{
		Screen: screen,
		Module: ModuleLabel(module),
		Stats:  screen.Stats,
	}
	for _, perm := range screen.Permissions {
		if !access.Allows(identity.Role, perm) {
			continue
		}
		page.Actions = append(page.Actions, perm.String())
		if perm == access.PermExamsPlanningExport {
			page.CanExport = true
		}
	}
	r.render(w, req, http.StatusOK, screen.Title, screen.Template, page)
}

type deniedPage struct {
	Reason access.Reason
}

// Denied renders the fixed Access-Denied view with 403 and the guard's reason
// code. It never lists the roles that would be admitted.
func (r *Renderer) Denied(w http.ResponseWriter, req *http.Request) {
	page := deniedPage{Reason: shared.DenialFromContext(req.Context())}
	r.render(w, req, http.StatusForbidden, "Access denied", templateAccessDenied, page)
}

// NotFound renders the Not-Found view with 404.
func (r *Renderer) NotFound(w http.ResponseWriter, req *http.Request) {
	r.render(w, req, http.StatusNotFound, "Not found", templateNotFound, nil)
}

// ExportPlanning acknowledges an exam-planning export request.
func (r *Renderer) ExportPlanning(w http.ResponseWriter, req *http.Request) {
	identity := shared.SessionFromContext(req.Context()).Identity()
	r.logger.Info("exam planning export requested",
		slog.String("user", identity.UserID),
		slog.String("role", identity.Role.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (r *Renderer) render(w http.ResponseWriter, req *http.Request, status int, title, name string, data any) {
	sess := shared.SessionFromContext(req.Context())
	var csrfToken string
	if r.csrf != nil {
		csrfToken, _ = r.csrf.EnsureToken(req.Context(), sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: req.URL.Path,
		Identity:    sess.Identity(),
		Data:        data,
	}
	if err := r.templates.RenderStatus(w, status, name, viewData); err != nil {
		r.logger.Error("render screen", slog.String("template", name), slog.Any("error", err))
	}
}
