package resource

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
)

// CreateTaskRequest represents a request to create a task.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateTaskRequest represents a partial task update. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title       *string           `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string           `json:"description,omitempty" binding:"omitempty,max=5000"`
	Status      *model.TaskStatus `json:"status,omitempty" binding:"omitempty,oneof=todo in_progress done"`
	AssigneeID  *uuid.UUID        `json:"assignee_id,omitempty"`
}

// UploadFileRequest represents a request to register an uploaded file.
type UploadFileRequest struct {
	Name        string               `json:"name" binding:"required,min=1,max=255"`
	Size        int64                `json:"size" binding:"min=0"`
	ContentType string               `json:"content_type"`
	Visibility  model.FileVisibility `json:"visibility" binding:"omitempty,oneof=private workspace public"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
}

// UpdateFileRequest represents a partial file update. Nil fields are left
// unchanged; a non-nil ACL replaces the grant lists wholesale.
type UpdateFileRequest struct {
	Name       *string               `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Visibility *model.FileVisibility `json:"visibility,omitempty" binding:"omitempty,oneof=private workspace public"`
	ACL        *model.FileACL        `json:"acl,omitempty"`
}
