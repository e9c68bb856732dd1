package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskboard/server/internal/model"
)

func TestTemplateFor(t *testing.T) {
	workspaceCaps := []model.Capability{
		model.CapabilityCreateTasks,
		model.CapabilityEditTasks,
		model.CapabilityDeleteTasks,
		model.CapabilityManageMembers,
		model.CapabilityManageSettings,
		model.CapabilityViewReports,
		model.CapabilityExportData,
	}

	t.Run("owner grants every workspace capability", func(t *testing.T) {
		tmpl := TemplateFor(model.RoleOwner)
		for _, c := range workspaceCaps {
			assert.True(t, tmpl.Has(c), c.String())
		}
	})

	t.Run("admin grants everything except settings", func(t *testing.T) {
		tmpl := TemplateFor(model.RoleAdmin)
		assert.False(t, tmpl.Has(model.CapabilityManageSettings))
		for _, c := range workspaceCaps {
			if c == model.CapabilityManageSettings {
				continue
			}
			assert.True(t, tmpl.Has(c), c.String())
		}
	})

	t.Run("member can create, edit and view reports only", func(t *testing.T) {
		tmpl := TemplateFor(model.RoleMember)
		assert.True(t, tmpl.Has(model.CapabilityCreateTasks))
		assert.True(t, tmpl.Has(model.CapabilityEditTasks))
		assert.True(t, tmpl.Has(model.CapabilityViewReports))
		assert.False(t, tmpl.Has(model.CapabilityDeleteTasks))
		assert.False(t, tmpl.Has(model.CapabilityManageMembers))
		assert.False(t, tmpl.Has(model.CapabilityManageSettings))
		assert.False(t, tmpl.Has(model.CapabilityExportData))
	})

	t.Run("viewer is read-only", func(t *testing.T) {
		tmpl := TemplateFor(model.RoleViewer)
		assert.True(t, tmpl.Has(model.CapabilityViewReports))
		for _, c := range workspaceCaps {
			if c == model.CapabilityViewReports {
				continue
			}
			assert.False(t, tmpl.Has(c), c.String())
		}
	})

	t.Run("unknown role falls back to viewer", func(t *testing.T) {
		assert.Equal(t, TemplateFor(model.RoleViewer), TemplateFor(model.Role("superuser")))
		assert.Equal(t, TemplateFor(model.RoleViewer), TemplateFor(model.Role("")))
	})

	t.Run("templates widen monotonically with seniority", func(t *testing.T) {
		order := []model.Role{model.RoleViewer, model.RoleMember, model.RoleAdmin, model.RoleOwner}
		for i := 1; i < len(order); i++ {
			lower := TemplateFor(order[i-1])
			higher := TemplateFor(order[i])
			for _, c := range workspaceCaps {
				if lower.Has(c) {
					assert.True(t, higher.Has(c), "%s lost %s over %s", order[i], c, order[i-1])
				}
			}
		}
	})

	t.Run("no template grants file capabilities", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleOwner, model.RoleAdmin, model.RoleMember, model.RoleViewer} {
			tmpl := TemplateFor(role)
			assert.False(t, tmpl.Has(model.CapabilityViewFile))
			assert.False(t, tmpl.Has(model.CapabilityDeleteFile))
		}
	})
}
