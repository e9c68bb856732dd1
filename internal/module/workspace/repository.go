package workspace

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskboard/server/internal/model"
)

// Repository defines the interface for workspace data access. GetWorkspace
// always loads the members list; the authorization core resolves against
// the already-fetched record.
type Repository interface {
	CreateWorkspace(ctx context.Context, ws *model.Workspace) error
	GetWorkspace(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	UpdateWorkspace(ctx context.Context, ws *model.Workspace) error

	AddMember(ctx context.Context, m *model.Membership) error
	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.Membership, error)
	UpdateMember(ctx context.Context, m *model.Membership) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*model.Membership, error)
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new workspace repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

func (r *repository) GetWorkspace(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).
		Preload("Members").
		First(&ws, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func (r *repository) UpdateWorkspace(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Save(ws).Error
}

func (r *repository) AddMember(ctx context.Context, m *model.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		First(&m, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdateMember(ctx context.Context, m *model.Membership) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", m.WorkspaceID, m.UserID).
		Save(m).Error
}

func (r *repository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&model.Membership{}, "workspace_id = ? AND user_id = ?", workspaceID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *repository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*model.Membership, error) {
	var members []*model.Membership
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
