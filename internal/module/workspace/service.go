package workspace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/module/authz"
)

// Service provides workspace and membership lifecycle logic. Permission
// sets are snapshotted from the role templates: a member carries the set
// captured when added or last re-roled, and later template changes do not
// flow back into existing memberships.
type Service struct {
	repo   Repository
	audit  authz.Sink
	logger *zap.Logger
}

// NewService creates a new workspace service.
func NewService(repo Repository, audit authz.Sink, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// CreateWorkspace creates a workspace owned by ownerID. The owner is not
// added to the members list; ownership is implicit and always maximal.
func (s *Service) CreateWorkspace(ctx context.Context, ownerID uuid.UUID, name string) (*model.Workspace, error) {
	ws := &model.Workspace{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Name:     name,
		IsActive: true,
	}
	if err := s.repo.CreateWorkspace(ctx, ws); err != nil {
		return nil, err
	}

	s.logger.Info("workspace created",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return ws, nil
}

// GetWorkspace retrieves a workspace for a requester. Non-members get
// ErrWorkspaceNotFound rather than a denial, so reads do not leak that the
// workspace exists.
func (s *Service) GetWorkspace(ctx context.Context, workspaceID, requesterID uuid.UUID) (*model.Workspace, authz.Resolution, error) {
	ws, err := s.repo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, authz.Resolution{}, err
	}

	res := authz.ResolveMembership(ws, requesterID)
	if !res.Found {
		return nil, authz.Resolution{}, ErrWorkspaceNotFound
	}
	return ws, res, nil
}

// AddMember adds a user to a workspace with the given role. The member's
// permission set is snapshotted from the role template at add time, and the
// membership starts pending until the user accepts.
func (s *Service) AddMember(ctx context.Context, workspaceID, requesterID, userID uuid.UUID, role model.Role) (*model.Membership, error) {
	ws, err := s.requireManageMembers(ctx, workspaceID, requesterID, "workspace.member_add")
	if err != nil {
		return nil, err
	}

	if !role.IsAssignable() {
		return nil, ErrInvalidRole
	}
	if ws.IsOwner(userID) {
		return nil, ErrCannotModifyOwner
	}
	if _, err := s.repo.GetMember(ctx, workspaceID, userID); err == nil {
		return nil, ErrMemberAlreadyExists
	} else if err != ErrMemberNotFound {
		return nil, err
	}

	member := &model.Membership{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		Permissions: authz.TemplateFor(role),
		Status:      model.MemberStatusPending,
		InvitedBy:   requesterID,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.recordMemberEvent(ctx, "workspace.member_add", workspaceID, requesterID, authz.OutcomeAllow)
	s.logger.Info("member added",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
	)
	return member, nil
}

// AcceptInvitation transitions a pending membership to active.
func (s *Service) AcceptInvitation(ctx context.Context, workspaceID, userID uuid.UUID) (*model.Membership, error) {
	member, err := s.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member.Status != model.MemberStatusPending {
		return nil, ErrMemberNotPending
	}

	member.Status = model.MemberStatusActive
	member.JoinedAt = time.Now()
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberRole changes a member's role. The permission set is
// re-derived from the current role template, discarding any prior manual
// overrides.
func (s *Service) UpdateMemberRole(ctx context.Context, workspaceID, requesterID, userID uuid.UUID, role model.Role) (*model.Membership, error) {
	ws, err := s.requireManageMembers(ctx, workspaceID, requesterID, "workspace.member_role_update")
	if err != nil {
		return nil, err
	}

	if !role.IsAssignable() {
		return nil, ErrInvalidRole
	}
	if ws.IsOwner(userID) {
		return nil, ErrCannotModifyOwner
	}

	member, err := s.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	member.Role = role
	member.Permissions = authz.TemplateFor(role)
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return nil, err
	}

	s.recordMemberEvent(ctx, "workspace.member_role_update", workspaceID, requesterID, authz.OutcomeAllow)
	return member, nil
}

// SuspendMember suspends an active member. A suspended member resolves
// like a user who was never added until reinstated.
func (s *Service) SuspendMember(ctx context.Context, workspaceID, requesterID, userID uuid.UUID) error {
	ws, err := s.requireManageMembers(ctx, workspaceID, requesterID, "workspace.member_suspend")
	if err != nil {
		return err
	}
	if ws.IsOwner(userID) {
		return ErrCannotModifyOwner
	}

	member, err := s.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}

	member.Status = model.MemberStatusSuspended
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return err
	}

	s.recordMemberEvent(ctx, "workspace.member_suspend", workspaceID, requesterID, authz.OutcomeAllow)
	return nil
}

// RemoveMember removes a member from the workspace.
func (s *Service) RemoveMember(ctx context.Context, workspaceID, requesterID, userID uuid.UUID) error {
	ws, err := s.requireManageMembers(ctx, workspaceID, requesterID, "workspace.member_remove")
	if err != nil {
		return err
	}
	if ws.IsOwner(userID) {
		return ErrCannotModifyOwner
	}

	if err := s.repo.RemoveMember(ctx, workspaceID, userID); err != nil {
		return err
	}

	s.recordMemberEvent(ctx, "workspace.member_remove", workspaceID, requesterID, authz.OutcomeAllow)
	return nil
}

// ListMembers lists the memberships of a workspace. Requires an active
// standing in the workspace.
func (s *Service) ListMembers(ctx context.Context, workspaceID, requesterID uuid.UUID) ([]*model.Membership, error) {
	ws, err := s.repo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !authz.ResolveMembership(ws, requesterID).Found {
		return nil, ErrWorkspaceNotFound
	}
	return s.repo.ListMembers(ctx, workspaceID)
}

// ArchiveWorkspace archives a workspace. Requires the settings capability,
// which only the owner template grants by default.
func (s *Service) ArchiveWorkspace(ctx context.Context, workspaceID, requesterID uuid.UUID) error {
	ws, err := s.repo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	res := authz.ResolveMembership(ws, requesterID)
	if !res.Found || !res.Permissions.Has(model.CapabilityManageSettings) {
		s.recordMemberEvent(ctx, "workspace.archive", workspaceID, requesterID, authz.OutcomeDeny)
		return ErrInsufficientPermission
	}

	ws.IsArchived = true
	ws.IsActive = false
	if err := s.repo.UpdateWorkspace(ctx, ws); err != nil {
		return err
	}

	s.recordMemberEvent(ctx, "workspace.archive", workspaceID, requesterID, authz.OutcomeAllow)
	return nil
}

// requireManageMembers loads the workspace and verifies the requester holds
// the member management capability. Denials are audited.
func (s *Service) requireManageMembers(ctx context.Context, workspaceID, requesterID uuid.UUID, event string) (*model.Workspace, error) {
	ws, err := s.repo.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws.IsArchived {
		return nil, ErrWorkspaceArchived
	}

	res := authz.ResolveMembership(ws, requesterID)
	if !res.Found || !res.Permissions.Has(model.CapabilityManageMembers) {
		s.recordMemberEvent(ctx, event, workspaceID, requesterID, authz.OutcomeDeny)
		return nil, ErrInsufficientPermission
	}
	return ws, nil
}

func (s *Service) recordMemberEvent(ctx context.Context, event string, workspaceID, userID uuid.UUID, outcome authz.Outcome) {
	s.audit.Record(ctx, authz.Event{
		Event:       event,
		UserID:      userID,
		WorkspaceID: workspaceID,
		Outcome:     outcome,
	})
}
