package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a member's role within a workspace.
type Role string

const (
	// RoleOwner is never stored in the members list; it is implied by
	// Workspace.OwnerID.
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}

// IsAssignable checks if the role can be assigned to a member. The owner
// role is carried by the workspace record itself and never assigned.
func (r Role) IsAssignable() bool {
	return r.IsValid() && r != RoleOwner
}

// MemberStatus represents the lifecycle state of a membership.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusPending   MemberStatus = "pending"
	MemberStatusSuspended MemberStatus = "suspended"
)

// Capability identifies one specific permitted action. The workspace
// capabilities map onto PermissionSet flags; the file capabilities map onto
// per-file ACL lists.
type Capability int

const (
	CapabilityCreateTasks Capability = iota
	CapabilityEditTasks
	CapabilityDeleteTasks
	CapabilityManageMembers
	CapabilityManageSettings
	CapabilityViewReports
	CapabilityExportData

	CapabilityViewFile
	CapabilityDownloadFile
	CapabilityEditFile
	CapabilityDeleteFile
)

// String returns the canonical capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityCreateTasks:
		return "canCreateTasks"
	case CapabilityEditTasks:
		return "canEditTasks"
	case CapabilityDeleteTasks:
		return "canDeleteTasks"
	case CapabilityManageMembers:
		return "canManageMembers"
	case CapabilityManageSettings:
		return "canManageSettings"
	case CapabilityViewReports:
		return "canViewReports"
	case CapabilityExportData:
		return "canExportData"
	case CapabilityViewFile:
		return "canView"
	case CapabilityDownloadFile:
		return "canDownload"
	case CapabilityEditFile:
		return "canEdit"
	case CapabilityDeleteFile:
		return "canDelete"
	default:
		return "unknown"
	}
}

// IsFileCapability reports whether the capability is one of the four
// per-file ACL capabilities.
func (c Capability) IsFileCapability() bool {
	switch c {
	case CapabilityViewFile, CapabilityDownloadFile, CapabilityEditFile, CapabilityDeleteFile:
		return true
	default:
		return false
	}
}

// PermissionSet holds the seven workspace capability flags. It is always
// fully populated; a zero value means every capability is denied.
type PermissionSet struct {
	CanCreateTasks    bool `json:"can_create_tasks" gorm:"not null;default:false"`
	CanEditTasks      bool `json:"can_edit_tasks" gorm:"not null;default:false"`
	CanDeleteTasks    bool `json:"can_delete_tasks" gorm:"not null;default:false"`
	CanManageMembers  bool `json:"can_manage_members" gorm:"not null;default:false"`
	CanManageSettings bool `json:"can_manage_settings" gorm:"not null;default:false"`
	CanViewReports    bool `json:"can_view_reports" gorm:"not null;default:false"`
	CanExportData     bool `json:"can_export_data" gorm:"not null;default:false"`
}

// Has reports whether the set grants the capability. File capabilities are
// never granted by a workspace permission set; they are resolved against the
// file's own ACL.
func (s PermissionSet) Has(c Capability) bool {
	switch c {
	case CapabilityCreateTasks:
		return s.CanCreateTasks
	case CapabilityEditTasks:
		return s.CanEditTasks
	case CapabilityDeleteTasks:
		return s.CanDeleteTasks
	case CapabilityManageMembers:
		return s.CanManageMembers
	case CapabilityManageSettings:
		return s.CanManageSettings
	case CapabilityViewReports:
		return s.CanViewReports
	case CapabilityExportData:
		return s.CanExportData
	case CapabilityViewFile, CapabilityDownloadFile, CapabilityEditFile, CapabilityDeleteFile:
		return false
	default:
		return false
	}
}

// Workspace is the tenant boundary scoping all resources and memberships.
// The owner is never listed redundantly in Members; owner status is implicit
// and always maximal.
type Workspace struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:uuid;not null"`
	Name       string    `json:"name" gorm:"not null"`
	IsActive   bool      `json:"is_active" gorm:"not null;default:true"`
	IsArchived bool      `json:"is_archived" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations (not loaded by default)
	Members []Membership `json:"members,omitempty" gorm:"foreignKey:WorkspaceID"`
}

// TableName returns the database table name.
func (Workspace) TableName() string {
	return "workspaces"
}

// IsOwner reports whether the user is the workspace owner.
func (w *Workspace) IsOwner(userID uuid.UUID) bool {
	return w.OwnerID == userID
}

// Membership represents one user's relationship to one workspace. At most
// one active membership exists per (workspace, user) pair.
type Membership struct {
	WorkspaceID uuid.UUID     `json:"workspace_id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID     `json:"user_id" gorm:"type:uuid;primaryKey"`
	Role        Role          `json:"role" gorm:"not null;default:member"`
	Permissions PermissionSet `json:"permissions" gorm:"embedded;embeddedPrefix:perm_"`
	Status      MemberStatus  `json:"status" gorm:"not null;default:pending"`
	InvitedBy   uuid.UUID     `json:"invited_by" gorm:"type:uuid"`
	JoinedAt    time.Time     `json:"joined_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName returns the database table name.
func (Membership) TableName() string {
	return "workspace_members"
}

// IsActive reports whether the membership grants any standing at all.
// Pending and suspended members are indistinguishable from non-members.
func (m *Membership) IsActive() bool {
	return m.Status == MemberStatusActive
}
