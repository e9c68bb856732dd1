package authz

import (
	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
)

// Decision is the outcome of an authorization check. Reason names the rule
// that produced the outcome, for audit logging.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// ruleOutcome is the result of evaluating a single rule.
type ruleOutcome int

const (
	// ruleSkip defers to the next rule in the chain.
	ruleSkip ruleOutcome = iota
	ruleAllow
	ruleDeny
)

// ruleInput carries the evaluation context through a rule chain. The
// workspace and resource are already-fetched records; fetching and
// staleness are the caller's concern.
type ruleInput struct {
	workspace  *model.Workspace
	resource   model.Resource
	userID     uuid.UUID
	capability model.Capability
}

// rule is one named predicate in an ordered, short-circuiting chain.
type rule struct {
	name string
	eval func(in ruleInput) ruleOutcome
}

// Task-like resources: a blanket workspace permission or ownership of the
// resource grants the capability. Ownership is a capability floor, never a
// ceiling: it can only add access, not revoke what a workspace permission
// grants.
var taskRules = []rule{
	{name: "workspace-permission", eval: workspacePermission},
	{name: "resource-ownership", eval: resourceOwnership},
}

// File resources: two-tier evaluation in fixed order. Public visibility
// only ever grants read-class capabilities, regardless of ACL contents.
var fileRules = []rule{
	{name: "file-uploader", eval: fileUploader},
	{name: "file-acl", eval: fileACL},
	{name: "public-visibility", eval: publicVisibility},
	{name: "membership-fallback", eval: membershipFallback},
}

// Authorize decides whether userID may exercise the capability on the
// resource. It is a pure function over its inputs and never returns an
// error; callers translate a negative decision into a domain error.
func Authorize(ws *model.Workspace, res model.Resource, userID uuid.UUID, capability model.Capability) Decision {
	in := ruleInput{workspace: ws, resource: res, userID: userID, capability: capability}

	var chain []rule
	switch res.ResourceType() {
	case model.ResourceTypeFile:
		chain = fileRules
	default:
		chain = taskRules
	}

	for _, r := range chain {
		switch r.eval(in) {
		case ruleAllow:
			return Decision{Allowed: true, Reason: r.name}
		case ruleDeny:
			return Decision{Allowed: false, Reason: r.name}
		}
	}

	return Decision{Allowed: false, Reason: "no rule grants " + capability.String()}
}

// workspacePermission allows when the user's resolved permission set grants
// the capability.
func workspacePermission(in ruleInput) ruleOutcome {
	res := ResolveMembership(in.workspace, in.userID)
	if res.Found && res.Permissions.Has(in.capability) {
		return ruleAllow
	}
	return ruleSkip
}

// resourceOwnership allows the creator of a resource to act on it even when
// no blanket workspace permission was granted.
func resourceOwnership(in ruleInput) ruleOutcome {
	if in.resource.ResourceOwner() == in.userID {
		return ruleAllow
	}
	return ruleSkip
}

// fileUploader grants the uploader all four file capabilities
// unconditionally.
func fileUploader(in ruleInput) ruleOutcome {
	if in.resource.ResourceOwner() == in.userID {
		return ruleAllow
	}
	return ruleSkip
}

// fileACL allows when the file's per-capability grant list names the user.
func fileACL(in ruleInput) ruleOutcome {
	f, ok := in.resource.(*model.File)
	if !ok {
		return ruleSkip
	}
	if f.ACL.Grants(in.capability, in.userID) {
		return ruleAllow
	}
	return ruleSkip
}

// publicVisibility allows read-class access to public files. Edit and
// delete are never granted by visibility alone.
func publicVisibility(in ruleInput) ruleOutcome {
	f, ok := in.resource.(*model.File)
	if !ok {
		return ruleSkip
	}
	if f.Visibility != model.FileVisibilityPublic {
		return ruleSkip
	}
	switch in.capability {
	case model.CapabilityViewFile, model.CapabilityDownloadFile:
		return ruleAllow
	default:
		return ruleSkip
	}
}

// membershipFallback treats view and download as satisfied by workspace
// membership presence. Mutating file capabilities get no membership
// fallback; only the uploader or an ACL grant reaches those.
func membershipFallback(in ruleInput) ruleOutcome {
	switch in.capability {
	case model.CapabilityViewFile, model.CapabilityDownloadFile:
	default:
		return ruleSkip
	}
	if ResolveMembership(in.workspace, in.userID).Found {
		return ruleAllow
	}
	return ruleSkip
}
