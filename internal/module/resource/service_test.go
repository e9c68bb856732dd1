package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/module/authz"
	"github.com/taskboard/server/internal/module/throttle"
)

// mockRepository is a testify mock of Repository.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateTask(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockRepository) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if task := args.Get(0); task != nil {
		return task.(*model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListTasks(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*model.Task, error) {
	args := m.Called(ctx, workspaceID, limit, offset)
	if tasks := args.Get(0); tasks != nil {
		return tasks.([]*model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) UpdateTask(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) CreateFile(ctx context.Context, file *model.File) error {
	return m.Called(ctx, file).Error(0)
}

func (m *mockRepository) GetFile(ctx context.Context, id uuid.UUID) (*model.File, error) {
	args := m.Called(ctx, id)
	if file := args.Get(0); file != nil {
		return file.(*model.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListFiles(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*model.File, error) {
	args := m.Called(ctx, workspaceID, limit, offset)
	if files := args.Get(0); files != nil {
		return files.([]*model.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) UpdateFile(ctx context.Context, file *model.File) error {
	return m.Called(ctx, file).Error(0)
}

func (m *mockRepository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// stubWorkspaces serves a fixed set of workspaces by ID.
type stubWorkspaces struct {
	workspaces map[uuid.UUID]*model.Workspace
}

func (s *stubWorkspaces) GetWorkspace(_ context.Context, id uuid.UUID) (*model.Workspace, error) {
	if ws, ok := s.workspaces[id]; ok {
		return ws, nil
	}
	return nil, authz.ErrWorkspaceNotFound
}

// recordingSink captures audit events for assertions.
type recordingSink struct {
	events []authz.Event
}

func (s *recordingSink) Record(_ context.Context, e authz.Event) {
	s.events = append(s.events, e)
}

func (s *recordingSink) last() authz.Event {
	return s.events[len(s.events)-1]
}

type serviceFixture struct {
	repo    *mockRepository
	sink    *recordingSink
	service *Service

	ownerID   uuid.UUID
	editorID  uuid.UUID
	viewerID  uuid.UUID
	workspace *model.Workspace
}

func newFixture(limiter *throttle.Limiter) *serviceFixture {
	f := &serviceFixture{
		repo:     new(mockRepository),
		sink:     &recordingSink{},
		ownerID:  uuid.New(),
		editorID: uuid.New(),
		viewerID: uuid.New(),
	}
	f.workspace = &model.Workspace{
		ID:       uuid.New(),
		OwnerID:  f.ownerID,
		IsActive: true,
		Members: []model.Membership{
			{
				UserID:      f.editorID,
				Role:        model.RoleMember,
				Permissions: authz.TemplateFor(model.RoleMember),
				Status:      model.MemberStatusActive,
			},
			{
				UserID:      f.viewerID,
				Role:        model.RoleViewer,
				Permissions: authz.TemplateFor(model.RoleViewer),
				Status:      model.MemberStatusActive,
			},
		},
	}
	getter := &stubWorkspaces{workspaces: map[uuid.UUID]*model.Workspace{f.workspace.ID: f.workspace}}
	f.service = NewService(f.repo, getter, limiter, f.sink, nil, zap.NewNop())
	return f
}

func TestTaskOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("create requires the create permission", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("CreateTask", ctx, mock.AnythingOfType("*model.Task")).Return(nil)

		task, err := f.service.CreateTask(ctx, f.workspace.ID, f.editorID, &CreateTaskRequest{Title: "ship"})
		require.NoError(t, err)
		assert.Equal(t, f.workspace.ID, task.WorkspaceID)
		assert.Equal(t, f.editorID, task.CreatedBy)
		assert.Equal(t, model.TaskStatusTodo, task.Status)

		_, err = f.service.CreateTask(ctx, f.workspace.ID, f.viewerID, &CreateTaskRequest{Title: "nope"})
		assert.ErrorIs(t, err, authz.ErrAccessDenied)
		assert.Equal(t, authz.OutcomeDeny, f.sink.last().Outcome)
	})

	t.Run("read is hidden from non-members", func(t *testing.T) {
		f := newFixture(nil)
		task := &model.Task{ID: uuid.New(), WorkspaceID: f.workspace.ID, CreatedBy: f.editorID}
		f.repo.On("GetTask", ctx, task.ID).Return(task, nil)

		_, err := f.service.GetTask(ctx, f.workspace.ID, task.ID, uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("creator updates own task without blanket permission", func(t *testing.T) {
		f := newFixture(nil)
		task := &model.Task{ID: uuid.New(), WorkspaceID: f.workspace.ID, CreatedBy: f.viewerID, Title: "draft"}
		f.repo.On("GetTask", ctx, task.ID).Return(task, nil)
		f.repo.On("UpdateTask", ctx, task).Return(nil)

		title := "final"
		updated, err := f.service.UpdateTask(ctx, f.workspace.ID, task.ID, f.viewerID, &UpdateTaskRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)
		assert.Equal(t, "resource-ownership", f.sink.last().Reason)
	})

	t.Run("denied write surfaces as a denial, not not-found", func(t *testing.T) {
		f := newFixture(nil)
		task := &model.Task{ID: uuid.New(), WorkspaceID: f.workspace.ID, CreatedBy: f.editorID}
		f.repo.On("GetTask", ctx, task.ID).Return(task, nil)

		title := "hijack"
		_, err := f.service.UpdateTask(ctx, f.workspace.ID, task.ID, f.viewerID, &UpdateTaskRequest{Title: &title})
		assert.ErrorIs(t, err, authz.ErrAccessDenied)
		f.repo.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything)
	})

	t.Run("cross-workspace task is rejected by the isolation check", func(t *testing.T) {
		f := newFixture(nil)
		foreign := &model.Task{ID: uuid.New(), WorkspaceID: uuid.New(), CreatedBy: f.ownerID}
		f.repo.On("GetTask", ctx, foreign.ID).Return(foreign, nil)

		_, err := f.service.GetTask(ctx, f.workspace.ID, foreign.ID, f.ownerID)
		assert.ErrorIs(t, err, authz.ErrTenantMismatch)
		assert.Equal(t, authz.EventCrossTenant, f.sink.last().Event)
	})

	t.Run("delete is throttled per user", func(t *testing.T) {
		limiter := throttle.New(throttle.NewMemoryStore(), 1, time.Minute)
		f := newFixture(limiter)

		first := &model.Task{ID: uuid.New(), WorkspaceID: f.workspace.ID, CreatedBy: f.ownerID}
		second := &model.Task{ID: uuid.New(), WorkspaceID: f.workspace.ID, CreatedBy: f.ownerID}
		f.repo.On("GetTask", ctx, first.ID).Return(first, nil)
		f.repo.On("GetTask", ctx, second.ID).Return(second, nil)
		f.repo.On("DeleteTask", ctx, first.ID).Return(nil)

		require.NoError(t, f.service.DeleteTask(ctx, f.workspace.ID, first.ID, f.ownerID))

		err := f.service.DeleteTask(ctx, f.workspace.ID, second.ID, f.ownerID)
		assert.ErrorIs(t, err, authz.ErrRateLimited)

		var rl *RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, time.Minute, rl.RetryAfter)
		f.repo.AssertNotCalled(t, "DeleteTask", ctx, second.ID)
	})
}

func TestFileOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("expired file is gone before authorization", func(t *testing.T) {
		f := newFixture(nil)
		past := time.Now().Add(-time.Hour)
		file := &model.File{
			ID:          uuid.New(),
			WorkspaceID: f.workspace.ID,
			UploadedBy:  f.editorID,
			ExpiresAt:   &past,
		}
		f.repo.On("GetFile", ctx, file.ID).Return(file, nil)

		// Even the uploader cannot read past expiry.
		_, err := f.service.GetFile(ctx, f.workspace.ID, file.ID, f.editorID)
		assert.ErrorIs(t, err, ErrFileExpired)
	})

	t.Run("denied read is hidden behind not-found", func(t *testing.T) {
		f := newFixture(nil)
		file := &model.File{
			ID:          uuid.New(),
			WorkspaceID: f.workspace.ID,
			UploadedBy:  f.editorID,
			Visibility:  model.FileVisibilityPrivate,
		}
		f.repo.On("GetFile", ctx, file.ID).Return(file, nil)

		_, err := f.service.GetFile(ctx, f.workspace.ID, file.ID, uuid.New())
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("member reads private files via membership", func(t *testing.T) {
		f := newFixture(nil)
		file := &model.File{
			ID:          uuid.New(),
			WorkspaceID: f.workspace.ID,
			UploadedBy:  f.editorID,
			Visibility:  model.FileVisibilityPrivate,
		}
		f.repo.On("GetFile", ctx, file.ID).Return(file, nil)

		got, err := f.service.DownloadFile(ctx, f.workspace.ID, file.ID, f.viewerID)
		require.NoError(t, err)
		assert.Equal(t, file, got)
		assert.Equal(t, "membership-fallback", f.sink.last().Reason)
	})

	t.Run("only the uploader or an acl grant mutates", func(t *testing.T) {
		f := newFixture(nil)
		file := &model.File{
			ID:          uuid.New(),
			WorkspaceID: f.workspace.ID,
			UploadedBy:  f.editorID,
			Visibility:  model.FileVisibilityWorkspace,
		}
		f.repo.On("GetFile", ctx, file.ID).Return(file, nil)

		name := "renamed.pdf"
		_, err := f.service.UpdateFile(ctx, f.workspace.ID, file.ID, f.viewerID, &UpdateFileRequest{Name: &name})
		assert.ErrorIs(t, err, authz.ErrAccessDenied)

		f.repo.On("UpdateFile", ctx, file).Return(nil)
		updated, err := f.service.UpdateFile(ctx, f.workspace.ID, file.ID, f.editorID, &UpdateFileRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "renamed.pdf", updated.Name)
	})

	t.Run("upload defaults to private visibility", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("CreateFile", ctx, mock.AnythingOfType("*model.File")).Return(nil)

		file, err := f.service.UploadFile(ctx, f.workspace.ID, f.viewerID, &UploadFileRequest{Name: "notes.txt"})
		require.NoError(t, err)
		assert.Equal(t, model.FileVisibilityPrivate, file.Visibility)
		assert.Equal(t, f.viewerID, file.UploadedBy)

		_, err = f.service.UploadFile(ctx, f.workspace.ID, uuid.New(), &UploadFileRequest{Name: "intruder.txt"})
		assert.ErrorIs(t, err, authz.ErrAccessDenied)
	})

	t.Run("unknown workspace context fails the whole request", func(t *testing.T) {
		f := newFixture(nil)
		file := &model.File{ID: uuid.New(), WorkspaceID: f.workspace.ID, UploadedBy: f.editorID}
		f.repo.On("GetFile", ctx, file.ID).Return(file, nil)

		_, err := f.service.GetFile(ctx, uuid.New(), file.ID, f.editorID)
		assert.True(t, errors.Is(err, authz.ErrWorkspaceNotFound))
	})
}
