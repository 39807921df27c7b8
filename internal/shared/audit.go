package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// AuditLog is one access event stored in audit_logs.
type AuditLog struct {
	ID      uuid.UUID      `json:"id"`
	ActorID string         `json:"actor_id"`
	Role    string         `json:"role"`
	Action  string         `json:"action"`
	Path    string         `json:"path"`
	Route   string         `json:"route"`
	Module  string         `json:"module,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	At      time.Time      `json:"at"`
}

// Validate checks the minimum fields every record carries.
func (l AuditLog) Validate() error {
	if l.Action == "" || l.Path == "" {
		return errors.New("audit log requires action/path")
	}
	return nil
}

// Auditor accepts access audit records.
type Auditor interface {
	Record(ctx context.Context, log AuditLog) error
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	db execer
}

// NewAuditLogger returns a new AuditLogger. pool is usually a *pgxpool.Pool.
func NewAuditLogger(pool execer) *AuditLogger {
	return &AuditLogger{db: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger not initialised")
	}
	if err := log.Validate(); err != nil {
		return err
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.At.IsZero() {
		log.At = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `INSERT INTO audit_logs (id, actor_id, role, action, path, route, module, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (id) DO NOTHING`,
		log.ID, log.ActorID, log.Role, log.Action, log.Path, log.Route, log.Module, metaJSON, log.At)
	return err
}

// LogAuditor writes audit records to a structured logger. It backs the gate
// when no database is configured.
type LogAuditor struct {
	Logger *slog.Logger
}

// Record logs the entry at info level.
func (a LogAuditor) Record(ctx context.Context, log AuditLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "access audit",
		slog.String("action", log.Action),
		slog.String("actor", log.ActorID),
		slog.String("role", log.Role),
		slog.String("path", log.Path),
		slog.String("route", log.Route),
		slog.String("module", log.Module),
	)
	return nil
}
