package workspace

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/shared/middleware"
	"github.com/taskboard/server/internal/shared/response"
)

// Handler handles HTTP requests for workspaces and memberships.
type Handler struct {
	service *Service
}

// NewHandler creates a new workspace handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers workspace routes. All routes require an
// authenticated identity; workspace-scoped routes additionally carry the
// declared workspace context in the path.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	workspaces := r.Group("/workspaces")
	{
		workspaces.POST("", h.CreateWorkspace)
		workspaces.GET("/:workspaceID", h.GetWorkspace)
		workspaces.POST("/:workspaceID/archive", h.ArchiveWorkspace)

		workspaces.GET("/:workspaceID/members", h.ListMembers)
		workspaces.POST("/:workspaceID/members", h.AddMember)
		workspaces.POST("/:workspaceID/members/accept", h.AcceptInvitation)
		workspaces.PATCH("/:workspaceID/members/:userID", h.UpdateMemberRole)
		workspaces.POST("/:workspaceID/members/:userID/suspend", h.SuspendMember)
		workspaces.DELETE("/:workspaceID/members/:userID", h.RemoveMember)
	}
}

// CreateWorkspace handles workspace creation.
func (h *Handler) CreateWorkspace(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ws, err := h.service.CreateWorkspace(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ToResponse(ws, model.RoleOwner))
}

// GetWorkspace handles reading a workspace.
func (h *Handler) GetWorkspace(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	ws, res, err := h.service.GetWorkspace(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToResponse(ws, res.Role))
}

// ArchiveWorkspace handles archiving a workspace.
func (h *Handler) ArchiveWorkspace(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	if err := h.service.ArchiveWorkspace(c.Request.Context(), workspaceID, userID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers handles listing workspace members.
func (h *Handler) ListMembers(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	members, err := h.service.ListMembers(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]*MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberToResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// AddMember handles adding a member to a workspace.
func (h *Handler) AddMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), workspaceID, userID, req.UserID, req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MemberToResponse(member))
}

// AcceptInvitation handles a pending member accepting their invitation.
func (h *Handler) AcceptInvitation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)

	member, err := h.service.AcceptInvitation(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MemberToResponse(member))
}

// UpdateMemberRole handles changing a member's role.
func (h *Handler) UpdateMemberRole(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	targetID, ok := h.parseUserParam(c)
	if !ok {
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.service.UpdateMemberRole(c.Request.Context(), workspaceID, userID, targetID, req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MemberToResponse(member))
}

// SuspendMember handles suspending a member.
func (h *Handler) SuspendMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	targetID, ok := h.parseUserParam(c)
	if !ok {
		return
	}

	if err := h.service.SuspendMember(c.Request.Context(), workspaceID, userID, targetID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMember handles removing a member.
func (h *Handler) RemoveMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	targetID, ok := h.parseUserParam(c)
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), workspaceID, userID, targetID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseUserParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.BadRequest(c, "user id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps workspace errors to HTTP responses. Reads hide the
// workspace behind 404; denied mutations surface as 403.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrWorkspaceNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: ErrMemberNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
		{Err: ErrInsufficientPermission, Status: http.StatusForbidden, Code: "FORBIDDEN"},
		{Err: ErrWorkspaceArchived, Status: http.StatusConflict, Code: "WORKSPACE_ARCHIVED"},
		{Err: ErrMemberAlreadyExists, Status: http.StatusConflict, Code: "ALREADY_MEMBER"},
		{Err: ErrMemberNotPending, Status: http.StatusConflict, Code: "NOT_PENDING"},
		{Err: ErrCannotModifyOwner, Status: http.StatusConflict, Code: "OWNER_IMMUTABLE"},
		{Err: ErrInvalidRole, Status: http.StatusBadRequest, Code: "INVALID_ROLE"},
	})
}
