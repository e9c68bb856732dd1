package model

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType identifies the kind of an authorizable entity.
type ResourceType string

const (
	ResourceTypeTask ResourceType = "task"
	ResourceTypeFile ResourceType = "file"
)

// Resource is any authorizable entity. The workspace anchor is immutable
// after creation and is the sole field consulted for tenant isolation.
type Resource interface {
	ResourceID() uuid.UUID
	ResourceType() ResourceType
	ResourceWorkspace() uuid.UUID
	ResourceOwner() uuid.UUID
}

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Task is a work item inside a workspace.
type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID  `json:"workspace_id" gorm:"type:uuid;not null;<-:create"`
	CreatedBy   uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status" gorm:"not null;default:todo"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Task) TableName() string {
	return "tasks"
}

// ResourceID implements Resource.
func (t *Task) ResourceID() uuid.UUID { return t.ID }

// ResourceType implements Resource.
func (t *Task) ResourceType() ResourceType { return ResourceTypeTask }

// ResourceWorkspace implements Resource.
func (t *Task) ResourceWorkspace() uuid.UUID { return t.WorkspaceID }

// ResourceOwner returns the task creator.
func (t *Task) ResourceOwner() uuid.UUID { return t.CreatedBy }

// FileVisibility represents file visibility.
type FileVisibility string

const (
	FileVisibilityPrivate   FileVisibility = "private"
	FileVisibilityWorkspace FileVisibility = "workspace"
	FileVisibilityPublic    FileVisibility = "public"
)

// FileACL holds the per-capability grant lists of a file, independent of
// workspace roles.
type FileACL struct {
	CanView     []uuid.UUID `json:"can_view" gorm:"serializer:json"`
	CanDownload []uuid.UUID `json:"can_download" gorm:"serializer:json"`
	CanEdit     []uuid.UUID `json:"can_edit" gorm:"serializer:json"`
	CanDelete   []uuid.UUID `json:"can_delete" gorm:"serializer:json"`
}

// Grants reports whether the ACL lists the user for the capability.
// Workspace capabilities are never granted by a file ACL.
func (a FileACL) Grants(c Capability, userID uuid.UUID) bool {
	var list []uuid.UUID
	switch c {
	case CapabilityViewFile:
		list = a.CanView
	case CapabilityDownloadFile:
		list = a.CanDownload
	case CapabilityEditFile:
		list = a.CanEdit
	case CapabilityDeleteFile:
		list = a.CanDelete
	default:
		return false
	}
	for _, id := range list {
		if id == userID {
			return true
		}
	}
	return false
}

// File is an uploaded artifact inside a workspace.
type File struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceID uuid.UUID      `json:"workspace_id" gorm:"type:uuid;not null;<-:create"`
	UploadedBy  uuid.UUID      `json:"uploaded_by" gorm:"type:uuid;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Size        int64          `json:"size" gorm:"not null;default:0"`
	ContentType string         `json:"content_type,omitempty"`
	Visibility  FileVisibility `json:"visibility" gorm:"not null;default:private"`
	ACL         FileACL        `json:"acl" gorm:"embedded;embeddedPrefix:acl_"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}

// ResourceID implements Resource.
func (f *File) ResourceID() uuid.UUID { return f.ID }

// ResourceType implements Resource.
func (f *File) ResourceType() ResourceType { return ResourceTypeFile }

// ResourceWorkspace implements Resource.
func (f *File) ResourceWorkspace() uuid.UUID { return f.WorkspaceID }

// ResourceOwner returns the uploader.
func (f *File) ResourceOwner() uuid.UUID { return f.UploadedBy }

// IsExpired reports whether the file's retention window has passed. Expiry
// is a temporal property checked by callers before content access, not an
// authorization rule.
func (f *File) IsExpired(now time.Time) bool {
	return f.ExpiresAt != nil && now.After(*f.ExpiresAt)
}
