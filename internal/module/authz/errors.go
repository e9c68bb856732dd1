package authz

import "errors"

// Authorization errors. All of these are expected, recoverable outcomes;
// callers translate them into HTTP responses.
var (
	// ErrWorkspaceNotFound covers both a truly absent workspace and one the
	// caller must not learn exists.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrResourceNotFound covers both a truly absent resource and one hidden
	// from the caller for access control on read paths.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrAccessDenied means the resource exists but the capability check
	// failed.
	ErrAccessDenied = errors.New("access denied")

	// ErrTenantMismatch means the resource belongs to a different workspace
	// than the one declared in the request context. Surfaced to callers as a
	// denial, logged internally as a cross-workspace access attempt.
	ErrTenantMismatch = errors.New("resource belongs to a different workspace")

	// ErrRateLimited means the throttle for the operation was exceeded.
	ErrRateLimited = errors.New("too many attempts")
)
