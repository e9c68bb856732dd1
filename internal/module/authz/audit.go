package authz

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/shared/logger"
)

// Outcome of an audited decision.
type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// Event is one authorization decision emitted to the audit sink.
type Event struct {
	Event        string             `json:"event"`
	UserID       uuid.UUID          `json:"user_id"`
	WorkspaceID  uuid.UUID          `json:"workspace_id"`
	ResourceType model.ResourceType `json:"resource_type,omitempty"`
	ResourceID   uuid.UUID          `json:"resource_id,omitempty"`
	Outcome      Outcome            `json:"outcome"`
	Reason       string             `json:"reason,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

// EventCrossTenant is the event name recorded when a resource is addressed
// under a workspace it does not belong to. Sinks should surface these at
// elevated severity.
const EventCrossTenant = "authz.cross_workspace_attempt"

// Sink receives allow/deny decisions for security logging. Implementations
// must not block the request path for long; the decision has already been
// made when Record is called.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// LogSink writes audit events as structured JSON log lines.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a sink writing to the given logger.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

// Record implements Sink. Denials log at warn, cross-tenant attempts at
// error, everything else at info.
func (s *LogSink) Record(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	attrs := []any{
		logger.String("event", e.Event),
		logger.String("user_id", e.UserID.String()),
		logger.String("workspace_id", e.WorkspaceID.String()),
		logger.String("outcome", string(e.Outcome)),
		logger.Any("timestamp", e.Timestamp),
	}
	if e.ResourceType != "" {
		attrs = append(attrs,
			logger.String("resource_type", string(e.ResourceType)),
			logger.String("resource_id", e.ResourceID.String()),
		)
	}
	if e.Reason != "" {
		attrs = append(attrs, logger.String("reason", e.Reason))
	}

	switch {
	case e.Event == EventCrossTenant:
		s.log.ErrorContext(ctx, "audit", attrs...)
	case e.Outcome == OutcomeDeny:
		s.log.WarnContext(ctx, "audit", attrs...)
	default:
		s.log.InfoContext(ctx, "audit", attrs...)
	}
}

// NopSink discards all events. Useful in tests.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(context.Context, Event) {}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = NopSink{}
)
