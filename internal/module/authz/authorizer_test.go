package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/taskboard/server/internal/model"
)

func activeMember(userID uuid.UUID, role model.Role, perms model.PermissionSet) model.Membership {
	return model.Membership{
		UserID:      userID,
		Role:        role,
		Permissions: perms,
		Status:      model.MemberStatusActive,
	}
}

func TestAuthorizeTask(t *testing.T) {
	ownerID := uuid.New()
	editorID := uuid.New()
	creatorID := uuid.New()
	strangerID := uuid.New()

	ws := &model.Workspace{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Members: []model.Membership{
			activeMember(editorID, model.RoleMember, model.PermissionSet{CanEditTasks: true}),
			activeMember(creatorID, model.RoleViewer, TemplateFor(model.RoleViewer)),
		},
	}
	task := &model.Task{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		CreatedBy:   creatorID,
		Title:       "ship it",
	}

	t.Run("blanket permission edits any task", func(t *testing.T) {
		d := Authorize(ws, task, editorID, model.CapabilityEditTasks)
		assert.True(t, d.Allowed)
		assert.Equal(t, "workspace-permission", d.Reason)
	})

	t.Run("creator acts on own task without the permission", func(t *testing.T) {
		d := Authorize(ws, task, creatorID, model.CapabilityEditTasks)
		assert.True(t, d.Allowed)
		assert.Equal(t, "resource-ownership", d.Reason)

		assert.True(t, Authorize(ws, task, creatorID, model.CapabilityDeleteTasks).Allowed)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		d := Authorize(ws, task, strangerID, model.CapabilityEditTasks)
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "canEditTasks")
	})

	t.Run("workspace owner acts on any task", func(t *testing.T) {
		d := Authorize(ws, task, ownerID, model.CapabilityDeleteTasks)
		assert.True(t, d.Allowed)
		assert.Equal(t, "workspace-permission", d.Reason)
	})

	t.Run("ownership is a floor, not a ceiling", func(t *testing.T) {
		// The editor keeps blanket edit access on a task they do not own,
		// and the creator's ownership does not unlock unrelated capabilities
		// like member management.
		assert.True(t, Authorize(ws, task, editorID, model.CapabilityEditTasks).Allowed)
		assert.False(t, ResolveMembership(ws, creatorID).Permissions.Has(model.CapabilityManageMembers))
	})

	t.Run("repeated evaluation is stable", func(t *testing.T) {
		first := Authorize(ws, task, creatorID, model.CapabilityEditTasks)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Authorize(ws, task, creatorID, model.CapabilityEditTasks))
		}
	})
}

func TestAuthorizeFile(t *testing.T) {
	ownerID := uuid.New()
	uploaderID := uuid.New()
	memberID := uuid.New()
	granteeID := uuid.New()
	strangerID := uuid.New()

	ws := &model.Workspace{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Members: []model.Membership{
			activeMember(uploaderID, model.RoleMember, TemplateFor(model.RoleMember)),
			activeMember(memberID, model.RoleViewer, TemplateFor(model.RoleViewer)),
		},
	}

	newFile := func(visibility model.FileVisibility, acl model.FileACL) *model.File {
		return &model.File{
			ID:          uuid.New(),
			WorkspaceID: ws.ID,
			UploadedBy:  uploaderID,
			Name:        "design.pdf",
			Visibility:  visibility,
			ACL:         acl,
		}
	}

	t.Run("uploader holds all four capabilities", func(t *testing.T) {
		f := newFile(model.FileVisibilityPrivate, model.FileACL{})
		for _, c := range []model.Capability{
			model.CapabilityViewFile,
			model.CapabilityDownloadFile,
			model.CapabilityEditFile,
			model.CapabilityDeleteFile,
		} {
			d := Authorize(ws, f, uploaderID, c)
			assert.True(t, d.Allowed, c.String())
			assert.Equal(t, "file-uploader", d.Reason)
		}
	})

	t.Run("acl grant is per capability", func(t *testing.T) {
		f := newFile(model.FileVisibilityPrivate, model.FileACL{
			CanView: []uuid.UUID{granteeID},
		})

		d := Authorize(ws, f, granteeID, model.CapabilityViewFile)
		assert.True(t, d.Allowed)
		assert.Equal(t, "file-acl", d.Reason)

		assert.False(t, Authorize(ws, f, granteeID, model.CapabilityDownloadFile).Allowed)
		assert.False(t, Authorize(ws, f, granteeID, model.CapabilityDeleteFile).Allowed)
	})

	t.Run("public visibility grants reads to anyone", func(t *testing.T) {
		f := newFile(model.FileVisibilityPublic, model.FileACL{})

		view := Authorize(ws, f, strangerID, model.CapabilityViewFile)
		assert.True(t, view.Allowed)
		assert.Equal(t, "public-visibility", view.Reason)
		assert.True(t, Authorize(ws, f, strangerID, model.CapabilityDownloadFile).Allowed)
	})

	t.Run("public visibility never grants mutation", func(t *testing.T) {
		f := newFile(model.FileVisibilityPublic, model.FileACL{})
		assert.False(t, Authorize(ws, f, strangerID, model.CapabilityEditFile).Allowed)
		assert.False(t, Authorize(ws, f, strangerID, model.CapabilityDeleteFile).Allowed)
		assert.False(t, Authorize(ws, f, memberID, model.CapabilityDeleteFile).Allowed)
	})

	t.Run("membership alone grants reads on private files", func(t *testing.T) {
		f := newFile(model.FileVisibilityPrivate, model.FileACL{})

		d := Authorize(ws, f, memberID, model.CapabilityViewFile)
		assert.True(t, d.Allowed)
		assert.Equal(t, "membership-fallback", d.Reason)

		assert.False(t, Authorize(ws, f, memberID, model.CapabilityEditFile).Allowed)
	})

	t.Run("stranger gets nothing on a private file", func(t *testing.T) {
		f := newFile(model.FileVisibilityPrivate, model.FileACL{})
		for _, c := range []model.Capability{
			model.CapabilityViewFile,
			model.CapabilityDownloadFile,
			model.CapabilityEditFile,
			model.CapabilityDeleteFile,
		} {
			assert.False(t, Authorize(ws, f, strangerID, c).Allowed, c.String())
		}
	})

	t.Run("workspace permission set never grants file capabilities", func(t *testing.T) {
		// Even the owner's full workspace set goes through the file chain;
		// the owner reads via membership, not via PermissionSet.
		f := newFile(model.FileVisibilityPrivate, model.FileACL{})

		d := Authorize(ws, f, ownerID, model.CapabilityViewFile)
		assert.True(t, d.Allowed)
		assert.Equal(t, "membership-fallback", d.Reason)

		assert.False(t, Authorize(ws, f, ownerID, model.CapabilityDeleteFile).Allowed)
	})
}
