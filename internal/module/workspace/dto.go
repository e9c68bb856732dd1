package workspace

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
)

// CreateWorkspaceRequest represents a request to create a workspace.
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddMemberRequest represents a request to add a member.
type AddMemberRequest struct {
	UserID uuid.UUID  `json:"user_id" binding:"required"`
	Role   model.Role `json:"role" binding:"required,oneof=admin member viewer"`
}

// UpdateMemberRoleRequest represents a request to change a member's role.
type UpdateMemberRoleRequest struct {
	Role model.Role `json:"role" binding:"required,oneof=admin member viewer"`
}

// WorkspaceResponse represents a workspace in API responses.
type WorkspaceResponse struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	IsArchived bool       `json:"is_archived"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Requester's resolved role in this workspace.
	MyRole model.Role `json:"my_role,omitempty"`
}

// ToResponse converts a workspace to its API representation.
func ToResponse(ws *model.Workspace, myRole model.Role) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:         ws.ID,
		OwnerID:    ws.OwnerID,
		Name:       ws.Name,
		IsActive:   ws.IsActive,
		IsArchived: ws.IsArchived,
		CreatedAt:  ws.CreatedAt,
		UpdatedAt:  ws.UpdatedAt,
		MyRole:     myRole,
	}
}

// MemberResponse represents a membership in API responses.
type MemberResponse struct {
	UserID      uuid.UUID           `json:"user_id"`
	Role        model.Role          `json:"role"`
	Permissions model.PermissionSet `json:"permissions"`
	Status      model.MemberStatus  `json:"status"`
	InvitedBy   uuid.UUID           `json:"invited_by"`
	JoinedAt    time.Time           `json:"joined_at"`
}

// MemberToResponse converts a membership to its API representation.
func MemberToResponse(m *model.Membership) *MemberResponse {
	return &MemberResponse{
		UserID:      m.UserID,
		Role:        m.Role,
		Permissions: m.Permissions,
		Status:      m.Status,
		InvitedBy:   m.InvitedBy,
		JoinedAt:    m.JoinedAt,
	}
}
