package audithttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/audit"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/internal/view"
)

type stubTimelineService struct {
	result      audit.Result
	exportRows  []audit.TimelineRow
	lastFilters audit.TimelineFilters
}

func (s *stubTimelineService) Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error) {
	s.lastFilters = filters
	return s.result, nil
}

func (s *stubTimelineService) Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	s.lastFilters = filters
	return s.exportRows, nil
}

func newAuditRouter(t *testing.T, service *stubTimelineService) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	handler, err := NewHandler(nil, service, templates, shared.NewCSRFManager("csrfsecret"), rbac.Middleware{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	handler.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func requestAs(t *testing.T, target string, role access.Role) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if role != "" {
		if err := sess.SignIn(access.Session{Authenticated: true, UserID: "u-" + role.String(), Role: role}); err != nil {
			t.Fatalf("sign in: %v", err)
		}
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestTimelineRedirectsAnonymous(t *testing.T) {
	router := newAuditRouter(t, &stubTimelineService{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, requestAs(t, "/audit/access", ""))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/auth/login?next=") {
		t.Fatalf("unexpected redirect: %s", loc)
	}
}

func TestTimelineDeniesFaculty(t *testing.T) {
	router := newAuditRouter(t, &stubTimelineService{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, requestAs(t, "/audit/access", access.RoleFaculty))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestTimelineRendersRows(t *testing.T) {
	rows := []audit.TimelineRow{{
		At:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Actor:  "u-17",
		Role:   "student",
		Action: "access.role-denied",
		Path:   "/master/entity-setup",
		Route:  "/master/entity-setup",
		Module: "master-setup",
	}}
	service := &stubTimelineService{result: audit.Result{Rows: rows, Paging: audit.PagingInfo{Page: 1, PageSize: 20}}}
	router := newAuditRouter(t, service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, requestAs(t, "/audit/access?from=2026-03-01&to=2026-03-15&role=student", access.RolePrincipal))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "access.role-denied") {
		t.Fatalf("expected action in response: %s", body)
	}
	if strings.Contains(body, "Download CSV") {
		t.Fatalf("principal must not see the export link")
	}
	if service.lastFilters.From.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("unexpected filters: %+v", service.lastFilters)
	}
	if service.lastFilters.Role != "student" {
		t.Fatalf("expected role filter, got %q", service.lastFilters.Role)
	}
}

func TestTimelineDefaultWindow(t *testing.T) {
	service := &stubTimelineService{}
	router := newAuditRouter(t, service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, requestAs(t, "/audit/access", access.RoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := service.lastFilters.From.Format("2006-01-02"); got != "2026-03-08" {
		t.Fatalf("expected a seven day window, got from=%s", got)
	}
	if !strings.Contains(rr.Body.String(), "Download CSV") {
		t.Fatalf("admin should see the export link")
	}
}

func TestTimelineRejectsBadFilters(t *testing.T) {
	cases := []string{
		"/audit/access?from=2026-03-10&to=2026-03-01",
		"/audit/access?from=2025-01-01&to=2026-03-01",
		"/audit/access?to=yesterday",
		"/audit/access?role=janitor",
		"/audit/access?page=0",
	}
	for _, target := range cases {
		router := newAuditRouter(t, &stubTimelineService{})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, requestAs(t, target, access.RoleSuperAdmin))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

func TestExportCSV(t *testing.T) {
	rows := []audit.TimelineRow{{At: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), Actor: "u-9", Role: "parent", Action: "access.role-denied", Path: "/lms/lessons", Route: "/lms/lessons", Module: "lms"}}
	service := &stubTimelineService{exportRows: rows}
	router := newAuditRouter(t, service)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, requestAs(t, "/audit/access/export.csv?from=2026-03-01&to=2026-03-05", access.RoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ctype := rr.Header().Get("Content-Type"); !strings.Contains(ctype, "text/csv") {
		t.Fatalf("unexpected content-type: %s", ctype)
	}
	if !strings.Contains(rr.Body.String(), "2026-03-02T08:00:00Z,u-9,parent,access.role-denied") {
		t.Fatalf("unexpected csv body: %s", rr.Body.String())
	}
}

func TestExportRequiresExportPermission(t *testing.T) {
	router := newAuditRouter(t, &stubTimelineService{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, requestAs(t, "/audit/access/export.csv", access.RoleInstitution))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRateLimitKeyPrefersUser(t *testing.T) {
	req := requestAs(t, "/audit/access/export.csv", access.RoleAdmin)
	key, err := rateLimitKey(req)
	if err != nil {
		t.Fatalf("rate limit key: %v", err)
	}
	if key != "user:u-admin" {
		t.Fatalf("unexpected key %q", key)
	}

	anon := httptest.NewRequest(http.MethodGet, "/audit/access/export.csv", nil)
	key, err = rateLimitKey(anon)
	if err != nil {
		t.Fatalf("rate limit key: %v", err)
	}
	if !strings.HasPrefix(key, "ip:") {
		t.Fatalf("unexpected anonymous key %q", key)
	}
}
