package workspace

import "errors"

// Workspace module errors.
var (
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrWorkspaceArchived      = errors.New("workspace is archived")
	ErrMemberNotFound         = errors.New("member not found")
	ErrMemberAlreadyExists    = errors.New("user is already a member")
	ErrMemberNotPending       = errors.New("membership is not pending")
	ErrInvalidRole            = errors.New("invalid role")
	ErrCannotModifyOwner      = errors.New("workspace owner cannot be modified as a member")
	ErrInsufficientPermission = errors.New("insufficient permission")
)
