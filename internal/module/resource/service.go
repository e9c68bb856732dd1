package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/module/authz"
	"github.com/taskboard/server/internal/module/throttle"
	"github.com/taskboard/server/internal/shared/metrics"
)

// WorkspaceGetter loads the workspace record the authorization core
// resolves against.
type WorkspaceGetter interface {
	GetWorkspace(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
}

// Service provides task and file operations. Every operation runs the same
// pipeline: resolve membership in the declared workspace, authorize the
// requested capability, verify the resource actually belongs to the
// declared workspace, throttle sensitive mutations, and emit the decision
// to the audit sink.
//
// Read paths hide denied resources behind not-found; write paths surface a
// denial, since the URL already implies existence.
type Service struct {
	repo       Repository
	workspaces WorkspaceGetter
	limiter    *throttle.Limiter
	audit      authz.Sink
	metrics    *metrics.Metrics
	logger     *zap.Logger

	// now is overridable in tests.
	now func() time.Time
}

// NewService creates a new resource service. The limiter guards sensitive
// mutations (deletes); metrics may be nil.
func NewService(repo Repository, workspaces WorkspaceGetter, limiter *throttle.Limiter, audit authz.Sink, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		workspaces: workspaces,
		limiter:    limiter,
		audit:      audit,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// ========== Task Operations ==========

// CreateTask creates a task in the declared workspace. Creation has no
// ownership fallback; the workspace permission alone decides.
func (s *Service) CreateTask(ctx context.Context, workspaceID, userID uuid.UUID, req *CreateTaskRequest) (*model.Task, error) {
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	res := authz.ResolveMembership(ws, userID)
	if !res.Found || !res.Permissions.Has(model.CapabilityCreateTasks) {
		s.record(ctx, "task.create", workspaceID, userID, model.ResourceTypeTask, uuid.Nil, authz.Decision{Reason: "workspace-permission"})
		return nil, authz.ErrAccessDenied
	}

	task := &model.Task{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		CreatedBy:   userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.record(ctx, "task.create", workspaceID, userID, model.ResourceTypeTask, task.ID, authz.Decision{Allowed: true, Reason: "workspace-permission"})
	return task, nil
}

// GetTask retrieves a task under the declared workspace context. Callers
// without standing in the workspace get not-found, never a denial.
func (s *Service) GetTask(ctx context.Context, workspaceID, taskID, userID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !authz.ResolveMembership(ws, userID).Found {
		s.record(ctx, "task.read", workspaceID, userID, model.ResourceTypeTask, taskID, authz.Decision{Reason: "membership"})
		return nil, ErrTaskNotFound
	}

	if err := s.checkTenant(ctx, task, workspaceID, userID); err != nil {
		return nil, err
	}

	s.record(ctx, "task.read", workspaceID, userID, model.ResourceTypeTask, taskID, authz.Decision{Allowed: true, Reason: "membership"})
	return task, nil
}

// ListTasks lists tasks in the declared workspace.
func (s *Service) ListTasks(ctx context.Context, workspaceID, userID uuid.UUID, limit, offset int) ([]*model.Task, error) {
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !authz.ResolveMembership(ws, userID).Found {
		return nil, authz.ErrWorkspaceNotFound
	}
	return s.repo.ListTasks(ctx, workspaceID, limit, offset)
}

// UpdateTask updates a task. A creator may edit their own task even
// without the blanket edit permission.
func (s *Service) UpdateTask(ctx context.Context, workspaceID, taskID, userID uuid.UUID, req *UpdateTaskRequest) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	decision := authz.Authorize(ws, task, userID, model.CapabilityEditTasks)
	s.record(ctx, "task.update", workspaceID, userID, model.ResourceTypeTask, taskID, decision)
	if !decision.Allowed {
		return nil, authz.ErrAccessDenied
	}

	if err := s.checkTenant(ctx, task, workspaceID, userID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask deletes a task. Deletion is a sensitive mutation and is
// throttled per user.
func (s *Service) DeleteTask(ctx context.Context, workspaceID, taskID, userID uuid.UUID) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	decision := authz.Authorize(ws, task, userID, model.CapabilityDeleteTasks)
	s.record(ctx, "task.delete", workspaceID, userID, model.ResourceTypeTask, taskID, decision)
	if !decision.Allowed {
		return authz.ErrAccessDenied
	}

	if err := s.checkTenant(ctx, task, workspaceID, userID); err != nil {
		return err
	}
	if err := s.throttleSensitive(ctx, userID, "task.delete"); err != nil {
		return err
	}

	return s.repo.DeleteTask(ctx, taskID)
}

// ========== File Operations ==========

// UploadFile registers a file record in the declared workspace. Content
// storage is external; this only creates the authorizable record. Any
// active member may upload.
func (s *Service) UploadFile(ctx context.Context, workspaceID, userID uuid.UUID, req *UploadFileRequest) (*model.File, error) {
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !authz.ResolveMembership(ws, userID).Found {
		s.record(ctx, "file.upload", workspaceID, userID, model.ResourceTypeFile, uuid.Nil, authz.Decision{Reason: "membership"})
		return nil, authz.ErrAccessDenied
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.FileVisibilityPrivate
	}

	file := &model.File{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UploadedBy:  userID,
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
		Visibility:  visibility,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := s.repo.CreateFile(ctx, file); err != nil {
		return nil, err
	}

	s.record(ctx, "file.upload", workspaceID, userID, model.ResourceTypeFile, file.ID, authz.Decision{Allowed: true, Reason: "membership"})
	return file, nil
}

// GetFile retrieves a file's metadata. Expired files are gone for readers
// before any authorization runs.
func (s *Service) GetFile(ctx context.Context, workspaceID, fileID, userID uuid.UUID) (*model.File, error) {
	return s.readFile(ctx, workspaceID, fileID, userID, model.CapabilityViewFile, "file.read")
}

// DownloadFile authorizes content access to a file. The returned record is
// what callers hand to the external storage layer for URL signing.
func (s *Service) DownloadFile(ctx context.Context, workspaceID, fileID, userID uuid.UUID) (*model.File, error) {
	return s.readFile(ctx, workspaceID, fileID, userID, model.CapabilityDownloadFile, "file.download")
}

func (s *Service) readFile(ctx context.Context, workspaceID, fileID, userID uuid.UUID, capability model.Capability, event string) (*model.File, error) {
	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	// Expiry is a hard cutoff layered over the decision, not a rule in the
	// authorizer.
	if file.IsExpired(s.now()) {
		return nil, ErrFileExpired
	}

	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	decision := authz.Authorize(ws, file, userID, capability)
	s.record(ctx, event, workspaceID, userID, model.ResourceTypeFile, fileID, decision)
	if !decision.Allowed {
		return nil, ErrFileNotFound
	}

	if err := s.checkTenant(ctx, file, workspaceID, userID); err != nil {
		return nil, err
	}
	return file, nil
}

// ListFiles lists files in the declared workspace.
func (s *Service) ListFiles(ctx context.Context, workspaceID, userID uuid.UUID, limit, offset int) ([]*model.File, error) {
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !authz.ResolveMembership(ws, userID).Found {
		return nil, authz.ErrWorkspaceNotFound
	}
	return s.repo.ListFiles(ctx, workspaceID, limit, offset)
}

// UpdateFile updates file metadata, visibility, or ACL grants.
func (s *Service) UpdateFile(ctx context.Context, workspaceID, fileID, userID uuid.UUID, req *UpdateFileRequest) (*model.File, error) {
	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	decision := authz.Authorize(ws, file, userID, model.CapabilityEditFile)
	s.record(ctx, "file.update", workspaceID, userID, model.ResourceTypeFile, fileID, decision)
	if !decision.Allowed {
		return nil, authz.ErrAccessDenied
	}

	if err := s.checkTenant(ctx, file, workspaceID, userID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		file.Name = *req.Name
	}
	if req.Visibility != nil {
		file.Visibility = *req.Visibility
	}
	if req.ACL != nil {
		file.ACL = *req.ACL
	}

	if err := s.repo.UpdateFile(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// DeleteFile deletes a file record. Throttled like task deletion.
func (s *Service) DeleteFile(ctx context.Context, workspaceID, fileID, userID uuid.UUID) error {
	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	ws, err := s.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	decision := authz.Authorize(ws, file, userID, model.CapabilityDeleteFile)
	s.record(ctx, "file.delete", workspaceID, userID, model.ResourceTypeFile, fileID, decision)
	if !decision.Allowed {
		return authz.ErrAccessDenied
	}

	if err := s.checkTenant(ctx, file, workspaceID, userID); err != nil {
		return err
	}
	if err := s.throttleSensitive(ctx, userID, "file.delete"); err != nil {
		return err
	}

	return s.repo.DeleteFile(ctx, fileID)
}

// ========== Pipeline helpers ==========

// checkTenant verifies the resource belongs to the declared workspace.
// A mismatch is a potential cross-tenant probe: denied outright and logged
// at elevated severity regardless of what the authorizer decided.
func (s *Service) checkTenant(ctx context.Context, res model.Resource, workspaceID, userID uuid.UUID) error {
	if authz.VerifyTenant(res, workspaceID) {
		return nil
	}

	s.logger.Warn("cross-workspace access attempt",
		zap.String("user_id", userID.String()),
		zap.String("declared_workspace_id", workspaceID.String()),
		zap.String("resource_workspace_id", res.ResourceWorkspace().String()),
		zap.String("resource_id", res.ResourceID().String()),
		zap.String("resource_type", string(res.ResourceType())),
	)
	s.audit.Record(ctx, authz.Event{
		Event:        authz.EventCrossTenant,
		UserID:       userID,
		WorkspaceID:  workspaceID,
		ResourceType: res.ResourceType(),
		ResourceID:   res.ResourceID(),
		Outcome:      authz.OutcomeDeny,
		Reason:       "tenant-isolation",
	})
	return authz.ErrTenantMismatch
}

// throttleSensitive gates a sensitive mutation through the per-user
// fixed-window counter.
func (s *Service) throttleSensitive(ctx context.Context, userID uuid.UUID, op string) error {
	if s.limiter == nil {
		return nil
	}

	decision, err := s.limiter.Attempt(ctx, userID.String()+":"+op)
	if err != nil {
		// Backend failure fails open; the operation was already authorized.
		return nil
	}
	if s.metrics != nil {
		s.metrics.RecordThrottle("sensitive", decision.Allowed)
	}
	if !decision.Allowed {
		return &RateLimitError{RetryAfter: decision.RetryAfter}
	}
	return nil
}

// record emits one decision to the audit sink and metrics.
func (s *Service) record(ctx context.Context, event string, workspaceID, userID uuid.UUID, resourceType model.ResourceType, resourceID uuid.UUID, decision authz.Decision) {
	outcome := authz.OutcomeDeny
	if decision.Allowed {
		outcome = authz.OutcomeAllow
	}
	s.audit.Record(ctx, authz.Event{
		Event:        event,
		UserID:       userID,
		WorkspaceID:  workspaceID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Outcome:      outcome,
		Reason:       decision.Reason,
	})
	if s.metrics != nil {
		s.metrics.RecordDecision(string(resourceType), decision.Allowed)
	}
}
