// internal/domain/admin/repository.go
package admin

import (
	"context"
	"time"
)

// Repository is the persistence contract for administrator credentials,
// lockout state, sessions and login history. Counter mutations must be
// atomic conditional updates in the store, not application-level
// read-modify-write, so concurrent attempts on the same account observe
// each other.
type Repository interface {
	Create(ctx context.Context, a *Admin) error
	FindActiveByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id int64) (*Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SuperAdminExists(ctx context.Context) (bool, error)
	Deactivate(ctx context.Context, id int64) error

	// Lockout bookkeeping. RecordFailedAttempt resets an expired lock before
	// counting, then increments; reaching maxAttempts on an unlocked account
	// sets locked_until = now + lockFor. Returns the resulting counter and
	// lock so callers can report retry-after.
	RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error)
	RecordSuccessfulLogin(ctx context.Context, id int64) error

	// Credential
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetTwoFactor(ctx context.Context, id int64, enabled bool) error

	// Password reset token (opaque token + expiry, both set or both cleared)
	SetPasswordResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, token string) (*Admin, error)
	ClearPasswordResetToken(ctx context.Context, id int64) error

	// Session list, capped at MaxSessions (FIFO eviction)
	AddSession(ctx context.Context, s *Session) error
	RemoveSession(ctx context.Context, adminID int64, tokenRef string) error
	RemoveAllSessions(ctx context.Context, adminID int64) error
	PruneExpiredSessions(ctx context.Context, adminID int64) error
	ListSessions(ctx context.Context, adminID int64) ([]*Session, error)

	// Login history, capped at MaxLoginHistory (FIFO eviction)
	AddLoginHistory(ctx context.Context, attempt *LoginAttempt) error
	ListLoginHistory(ctx context.Context, adminID int64, limit int) ([]*LoginAttempt, error)
}
