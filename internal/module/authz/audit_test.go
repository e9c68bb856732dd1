package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/shared/logger"
)

func newBufferSink(t *testing.T) (*LogSink, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf})
	return NewLogSink(log), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	return m
}

func TestLogSink(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	wsID := uuid.New()
	resID := uuid.New()

	t.Run("allow logs at info with full fields", func(t *testing.T) {
		sink, buf := newBufferSink(t)

		sink.Record(ctx, Event{
			Event:        "task.update",
			UserID:       userID,
			WorkspaceID:  wsID,
			ResourceType: model.ResourceTypeTask,
			ResourceID:   resID,
			Outcome:      OutcomeAllow,
			Reason:       "workspace-permission",
		})

		m := decodeLine(t, buf)
		assert.Equal(t, "INFO", m["level"])
		assert.Equal(t, "task.update", m["event"])
		assert.Equal(t, userID.String(), m["user_id"])
		assert.Equal(t, wsID.String(), m["workspace_id"])
		assert.Equal(t, "task", m["resource_type"])
		assert.Equal(t, resID.String(), m["resource_id"])
		assert.Equal(t, "allow", m["outcome"])
		assert.Equal(t, "workspace-permission", m["reason"])
		assert.NotEmpty(t, m["timestamp"])
	})

	t.Run("deny logs at warn", func(t *testing.T) {
		sink, buf := newBufferSink(t)

		sink.Record(ctx, Event{
			Event:       "task.delete",
			UserID:      userID,
			WorkspaceID: wsID,
			Outcome:     OutcomeDeny,
		})

		m := decodeLine(t, buf)
		assert.Equal(t, "WARN", m["level"])
		assert.Equal(t, "deny", m["outcome"])
	})

	t.Run("cross-tenant attempt logs at error", func(t *testing.T) {
		sink, buf := newBufferSink(t)

		sink.Record(ctx, Event{
			Event:        EventCrossTenant,
			UserID:       userID,
			WorkspaceID:  wsID,
			ResourceType: model.ResourceTypeFile,
			ResourceID:   resID,
			Outcome:      OutcomeDeny,
			Reason:       "tenant-isolation",
		})

		m := decodeLine(t, buf)
		assert.Equal(t, "ERROR", m["level"])
		assert.Equal(t, EventCrossTenant, m["event"])
	})

	t.Run("resource fields omitted when absent", func(t *testing.T) {
		sink, buf := newBufferSink(t)

		sink.Record(ctx, Event{
			Event:       "workspace.member_added",
			UserID:      userID,
			WorkspaceID: wsID,
			Outcome:     OutcomeAllow,
		})

		m := decodeLine(t, buf)
		assert.NotContains(t, m, "resource_type")
		assert.NotContains(t, m, "resource_id")
		assert.NotContains(t, m, "reason")
	})
}
