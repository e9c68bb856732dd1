package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/taskboard/server/internal/shared/errors"
)

const (
	// WorkspaceHeader carries the declared workspace context when the route
	// has no workspace path parameter.
	WorkspaceHeader = "X-Workspace-ID"
	// WorkspaceIDKey is the context key for the declared workspace ID.
	WorkspaceIDKey = "workspace_id"
	// WorkspaceParam is the route parameter name for workspace-scoped routes.
	WorkspaceParam = "workspaceID"
)

// WorkspaceContext returns a middleware that establishes the workspace
// context a request claims to operate in, from the route parameter or the
// X-Workspace-ID header. Every decision downstream is double-checked
// against this declared tenant.
//
// If required is true, requests without a parseable workspace ID are
// rejected before any resource is touched.
func WorkspaceContext(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(WorkspaceParam)
		if raw == "" {
			raw = c.GetHeader(WorkspaceHeader)
		}

		if raw == "" {
			if required {
				appErr := apperrors.ContextMissing()
				c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
					"error": gin.H{
						"code":    appErr.Code,
						"message": appErr.Message,
					},
				})
				return
			}
			c.Next()
			return
		}

		workspaceID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_WORKSPACE_ID",
					"message": "workspace id must be a UUID",
				},
			})
			return
		}

		c.Set(WorkspaceIDKey, workspaceID)
		c.Next()
	}
}

// GetWorkspaceID returns the declared workspace ID from context.
// Returns uuid.Nil if no workspace context was established.
func GetWorkspaceID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(WorkspaceIDKey); exists {
		if id, ok := val.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
