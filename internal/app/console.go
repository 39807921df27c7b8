package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/audit"
	audithttp "github.com/scholaris/scholaris/internal/audit/http"
	"github.com/scholaris/scholaris/internal/auth"
	"github.com/scholaris/scholaris/internal/navigation"
	"github.com/scholaris/scholaris/internal/observability"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/screens"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/internal/view"
	"github.com/scholaris/scholaris/jobs"
)

// Dependencies collects the clients the console handler is built from.
type Dependencies struct {
	Logger  *slog.Logger
	Config  *Config
	Redis   *redis.Client
	Auditor shared.Auditor
	Metrics *observability.Metrics
	// Inspector reports queue depth on /jobs/health. Optional.
	Inspector *asynq.Inspector
	// Pool enables the access audit timeline. Optional.
	Pool *pgxpool.Pool
}

// NewConsole wires the route table, guards, screens and auth into one
// handler. A route table that fails validation aborts here.
func NewConsole(deps Dependencies) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		return nil, fmt.Errorf("app: config required")
	}
	auditor := deps.Auditor
	if auditor == nil {
		auditor = shared.LogAuditor{Logger: logger}
	}

	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("app: parse templates: %w", err)
	}

	table, err := navigation.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("app: route table: %w", err)
	}
	for _, issue := range table.Lint() {
		logger.Warn("route table lint", slog.String("issue", issue))
	}

	sessionManager := shared.NewSessionManager(deps.Redis, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	renderer := screens.NewRenderer(logger, templates, csrfManager)
	rbacMiddleware := rbac.Middleware{
		Logger:    logger,
		Auditor:   auditor,
		Metrics:   deps.Metrics,
		Denied:    http.HandlerFunc(renderer.Denied),
		LoginPath: cfg.LoginPath,
	}

	shell, err := navigation.NewShell(table, rbacMiddleware, renderer)
	if err != nil {
		return nil, err
	}

	authHandler := auth.NewHandler(logger, auth.NewService(auditor, logger), templates, sessionManager, csrfManager)
	permissionsHandler, err := rbac.NewPermissionsHandler(logger, rbac.NewService(), templates, csrfManager, rbacMiddleware)
	if err != nil {
		return nil, fmt.Errorf("app: permissions handler: %w", err)
	}

	var auditHandler *audithttp.Handler
	if deps.Pool != nil {
		auditHandler, err = audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(deps.Pool)), templates, csrfManager, rbacMiddleware)
		if err != nil {
			return nil, fmt.Errorf("app: audit handler: %w", err)
		}
	}

	jobsRoute, err := access.NewRoute(access.RouteDescriptor{
		Pattern:  "/jobs/*",
		Category: access.CategoryMasterSetup,
		Module:   access.ModuleMasterSetup,
	})
	if err != nil {
		return nil, fmt.Errorf("app: jobs route: %w", err)
	}

	return NewRouter(RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		AuditHandler:       auditHandler,
		RBACMiddleware:     rbacMiddleware,
		Screens:            renderer,
		Shell:              shell,
		JobsHandler:        jobs.NewHandler(deps.Inspector, logger),
		JobsRoute:          jobsRoute,
		Metrics:            deps.Metrics,
	}), nil
}
