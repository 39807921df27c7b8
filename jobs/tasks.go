package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/scholaris/scholaris/internal/jobs"
	"github.com/scholaris/scholaris/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAccessAudit persists one access audit entry.
	TaskAccessAudit = "access:audit"
	// TaskAuditPrune removes audit entries past retention.
	TaskAuditPrune = "audit:prune"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// NewAccessAuditTask builds an audit task. ID and timestamp are fixed before
// enqueueing so a retried task inserts the same row.
func NewAccessAuditTask(entry shared.AuditLog) (*asynq.Task, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAccessAudit, data), nil
}

// AccessAuditJob writes queued audit entries to the sink.
type AccessAuditJob struct {
	Sink    shared.Auditor
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAccessAuditJob wires dependencies for the audit handler.
func NewAccessAuditJob(sink shared.Auditor, logger *slog.Logger, metrics *jobmetrics.Metrics) *AccessAuditJob {
	return &AccessAuditJob{Sink: sink, Logger: logger, Metrics: metrics}
}

// Handle processes TaskAccessAudit tasks.
func (j *AccessAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sink == nil {
		return errors.New("access audit: handler not configured")
	}
	var entry shared.AuditLog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return fmt.Errorf("access audit: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("access audit: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.metrics().Track(TaskAccessAudit)
	err := j.Sink.Record(ctx, entry)
	if err != nil {
		j.logger().Error("persist access audit", slog.String("action", entry.Action), slog.Any("error", err))
	}
	return tracker.End(err)
}

func (j *AccessAuditJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AccessAuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
