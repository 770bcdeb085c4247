// internal/domain/otp/repository.go
package otp

import (
	"context"
	"time"
)

// RequesterContext is recorded on each issued code for audit.
type RequesterContext struct {
	IPAddress string
	UserAgent string
}

// Repository is the storage contract for one-time codes. Implementations
// must give codes time-to-live semantics (expired codes stop being
// returned), make issue atomic with the deletion of prior codes for the
// same email, and count verification attempts atomically before any value
// comparison happens.
type Repository interface {
	// Issue deletes all outstanding codes for the email (any purpose), then
	// stores a freshly generated code expiring after ttl.
	Issue(ctx context.Context, email, purpose string, ttl time.Duration, reqCtx RequesterContext) (*Code, error)

	// Find returns the current unexpired code for the email, or
	// xerrors.ErrNotFound.
	Find(ctx context.Context, email string) (*Code, error)

	// Verify checks candidate against the stored code. Order: terminal
	// verified state, expiry, attempt ceiling (incremented and persisted
	// before comparison), then exact match. On success the verified flag is
	// set. Returns the record's purpose so callers can scope it.
	Verify(ctx context.Context, email, candidate string, maxAttempts int) (*Code, error)
}
