package resource

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskboard/server/internal/module/authz"
)

// Resource module errors. Both not-found sentinels double as the
// "exists but hidden" outcome on read paths.
var (
	ErrTaskNotFound = fmt.Errorf("task: %w", authz.ErrResourceNotFound)
	ErrFileNotFound = fmt.Errorf("file: %w", authz.ErrResourceNotFound)
	ErrFileExpired  = errors.New("file has expired")
)

// RateLimitError reports a throttled sensitive operation with a retry hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %s", e.RetryAfter)
}

// Is matches the rate limited sentinel.
func (e *RateLimitError) Is(target error) bool {
	return target == authz.ErrRateLimited
}
