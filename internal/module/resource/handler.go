package resource

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskboard/server/internal/module/authz"
	"github.com/taskboard/server/internal/module/workspace"
	"github.com/taskboard/server/internal/shared/middleware"
	"github.com/taskboard/server/internal/shared/pagination"
	"github.com/taskboard/server/internal/shared/response"
)

// Handler handles HTTP requests for tasks and files.
type Handler struct {
	service *Service
}

// NewHandler creates a new resource handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers task and file routes under a workspace path.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ws := r.Group("/workspaces/:workspaceID")
	{
		tasks := ws.Group("/tasks")
		{
			tasks.POST("", h.CreateTask)
			tasks.GET("", h.ListTasks)
			tasks.GET("/:taskID", h.GetTask)
			tasks.PATCH("/:taskID", h.UpdateTask)
			tasks.DELETE("/:taskID", h.DeleteTask)
		}

		files := ws.Group("/files")
		{
			files.POST("", h.UploadFile)
			files.GET("", h.ListFiles)
			files.GET("/:fileID", h.GetFile)
			files.GET("/:fileID/download", h.DownloadFile)
			files.PATCH("/:fileID", h.UpdateFile)
			files.DELETE("/:fileID", h.DeleteFile)
		}
	}
}

// ========== Task Handlers ==========

// CreateTask handles task creation.
func (h *Handler) CreateTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), workspaceID, userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasks handles listing tasks in a workspace.
func (h *Handler) ListTasks(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	limit, offset, ok := paginationParams(c)
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), workspaceID, userID, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask handles reading a single task.
func (h *Handler) GetTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	taskID, ok := parseIDParam(c, "taskID")
	if !ok {
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), workspaceID, taskID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles a partial task update.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	taskID, ok := parseIDParam(c, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), workspaceID, taskID, userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles task deletion.
func (h *Handler) DeleteTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	taskID, ok := parseIDParam(c, "taskID")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), workspaceID, taskID, userID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ========== File Handlers ==========

// UploadFile handles registering an uploaded file.
func (h *Handler) UploadFile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	var req UploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := h.service.UploadFile(c.Request.Context(), workspaceID, userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// ListFiles handles listing files in a workspace.
func (h *Handler) ListFiles(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	limit, offset, ok := paginationParams(c)
	if !ok {
		return
	}

	files, err := h.service.ListFiles(c.Request.Context(), workspaceID, userID, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetFile handles reading file metadata.
func (h *Handler) GetFile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	fileID, ok := parseIDParam(c, "fileID")
	if !ok {
		return
	}

	file, err := h.service.GetFile(c.Request.Context(), workspaceID, fileID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// DownloadFile handles authorizing content access to a file.
func (h *Handler) DownloadFile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	fileID, ok := parseIDParam(c, "fileID")
	if !ok {
		return
	}

	file, err := h.service.DownloadFile(c.Request.Context(), workspaceID, fileID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// UpdateFile handles a partial file update.
func (h *Handler) UpdateFile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	fileID, ok := parseIDParam(c, "fileID")
	if !ok {
		return
	}

	var req UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := h.service.UpdateFile(c.Request.Context(), workspaceID, fileID, userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// DeleteFile handles file deletion.
func (h *Handler) DeleteFile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	fileID, ok := parseIDParam(c, "fileID")
	if !ok {
		return
	}

	if err := h.service.DeleteFile(c.Request.Context(), workspaceID, fileID, userID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ========== Helpers ==========

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func paginationParams(c *gin.Context) (limit, offset int, ok bool) {
	p := pagination.New()
	if err := c.ShouldBindQuery(p); err != nil {
		response.BadRequest(c, err.Error())
		return 0, 0, false
	}
	return p.Limit(), p.Offset(), true
}

// handleError maps resource errors to HTTP responses. Hidden reads come
// back as 404; denied writes as 403; throttled deletes as 429 with a
// Retry-After hint.
func (h *Handler) handleError(c *gin.Context, err error) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		response.TooManyRequests(c, int(rl.RetryAfter.Seconds())+1)
		return
	}

	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrTaskNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: ErrFileNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: ErrFileExpired, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: authz.ErrWorkspaceNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: workspace.ErrWorkspaceNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: authz.ErrAccessDenied, Status: http.StatusForbidden, Code: "FORBIDDEN"},
		{Err: authz.ErrTenantMismatch, Status: http.StatusForbidden, Code: "FORBIDDEN"},
	})
}
