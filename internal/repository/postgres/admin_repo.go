// internal/repository/postgres/admin_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadhub-service/internal/domain/admin"
	xerrors "leadhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository persists administrator records, their capped session list
// and login history. All counter mutations are single conditional UPDATE
// statements so concurrent requests for the same account serialize in the
// database, never in application memory.
type AdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

var _ admin.Repository = (*AdminRepository)(nil)

const adminColumns = `
	id, full_name, email, role, is_active,
	password_hash, password_changed_at, two_factor_enabled,
	failed_login_attempts, locked_until,
	reset_token, reset_token_expires_at,
	last_login, created_at, updated_at
`

func scanAdmin(row pgx.Row) (*admin.Admin, error) {
	var a admin.Admin
	err := row.Scan(
		&a.ID, &a.FullName, &a.Email, &a.Role, &a.IsActive,
		&a.PasswordHash, &a.PasswordChangedAt, &a.TwoFactorEnabled,
		&a.FailedLoginAttempts, &a.LockedUntil,
		&a.ResetToken, &a.ResetTokenExpiresAt,
		&a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	return &a, nil
}

// ========== Account Methods ==========

// Create inserts a new administrator account.
func (r *AdminRepository) Create(ctx context.Context, a *admin.Admin) error {
	query := `
		INSERT INTO admins (full_name, email, role, is_active, password_hash, password_changed_at, two_factor_enabled)
		VALUES ($1, LOWER($2), $3, $4, $5, NOW(), $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		a.FullName, a.Email, a.Role, a.IsActive, a.PasswordHash, a.TwoFactorEnabled,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// FindActiveByEmail retrieves an active admin by email, case-insensitive.
func (r *AdminRepository) FindActiveByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(email) = LOWER($1) AND is_active`
	return scanAdmin(r.db.QueryRow(ctx, query, email))
}

// FindByID retrieves an admin by id regardless of active state; callers
// re-check the active flag themselves (the request gate depends on seeing
// deactivated accounts).
func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*admin.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return scanAdmin(r.db.QueryRow(ctx, query, id))
}

// ExistsByEmail checks if an admin with email exists, active or not.
func (r *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM admins WHERE LOWER(email) = LOWER($1))`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}

// SuperAdminExists checks whether any super admin account exists.
func (r *AdminRepository) SuperAdminExists(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM admins WHERE role = 'super_admin')`
	var exists bool
	err := r.db.QueryRow(ctx, query).Scan(&exists)
	return exists, err
}

// Deactivate soft-disables an account. Accounts are never hard-deleted.
func (r *AdminRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE admins SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ========== Lockout Bookkeeping ==========

// RecordFailedAttempt counts a failed login in one statement: an expired
// lock resets the counter to this attempt; otherwise the counter increments,
// and reaching maxAttempts on an unlocked account sets the lock. The update
// is persisted immediately so concurrent readers observe the lock promptly.
func (r *AdminRepository) RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	query := `
		UPDATE admins SET
			failed_login_attempts = CASE
				WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN 1
				ELSE failed_login_attempts + 1
			END,
			locked_until = CASE
				WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN NULL
				WHEN locked_until IS NULL AND failed_login_attempts + 1 >= $2 THEN $3
				ELSE locked_until
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until
	`
	lockUntil := time.Now().Add(lockFor)

	var attempts int
	var lockedUntil *time.Time
	err := r.db.QueryRow(ctx, query, id, maxAttempts, lockUntil).Scan(&attempts, &lockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, xerrors.ErrNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to record failed attempt: %w", err)
	}
	return attempts, lockedUntil, nil
}

// RecordSuccessfulLogin clears the failed-attempt counter and lock and
// stamps last_login.
func (r *AdminRepository) RecordSuccessfulLogin(ctx context.Context, id int64) error {
	query := `
		UPDATE admins
		SET failed_login_attempts = 0, locked_until = NULL, last_login = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// ========== Credential Methods ==========

// UpdatePassword stores a new hash and stamps password_changed_at.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE admins
		SET password_hash = $2, password_changed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// SetTwoFactor flips the two-factor flag. Takes effect on the next login.
func (r *AdminRepository) SetTwoFactor(ctx context.Context, id int64, enabled bool) error {
	query := `UPDATE admins SET two_factor_enabled = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ========== Password Reset Token ==========

// SetPasswordResetToken overwrites any prior token; token and expiry are
// always written together.
func (r *AdminRepository) SetPasswordResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE admins
		SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, token, expiresAt)
	return err
}

// FindByResetToken resolves an unexpired reset token on an active account;
// fails closed when the pair is absent or stale.
func (r *AdminRepository) FindByResetToken(ctx context.Context, token string) (*admin.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins
		WHERE reset_token = $1 AND reset_token_expires_at > NOW() AND is_active
	`
	return scanAdmin(r.db.QueryRow(ctx, query, token))
}

// ClearPasswordResetToken clears both fields of the pair.
func (r *AdminRepository) ClearPasswordResetToken(ctx context.Context, id int64) error {
	query := `
		UPDATE admins
		SET reset_token = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// ========== Session List ==========

// AddSession inserts a session record and trims the account's list back to
// the cap, evicting oldest first, inside one transaction.
func (r *AdminRepository) AddSession(ctx context.Context, s *admin.Session) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO admin_sessions (admin_id, token_ref, device, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, insert,
		s.AdminID, s.TokenRef, s.Device, s.IPAddress, s.UserAgent, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	trim := `
		DELETE FROM admin_sessions
		WHERE admin_id = $1 AND id NOT IN (
			SELECT id FROM admin_sessions
			WHERE admin_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		)
	`
	if _, err := tx.Exec(ctx, trim, s.AdminID, admin.MaxSessions); err != nil {
		return fmt.Errorf("failed to trim sessions: %w", err)
	}

	return tx.Commit(ctx)
}

// RemoveSession deletes one session entry by its token reference.
func (r *AdminRepository) RemoveSession(ctx context.Context, adminID int64, tokenRef string) error {
	query := `DELETE FROM admin_sessions WHERE admin_id = $1 AND token_ref = $2`
	tag, err := r.db.Exec(ctx, query, adminID, tokenRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// PruneExpiredSessions drops session entries past their expiry.
func (r *AdminRepository) PruneExpiredSessions(ctx context.Context, adminID int64) error {
	query := `DELETE FROM admin_sessions WHERE admin_id = $1 AND expires_at <= NOW()`
	_, err := r.db.Exec(ctx, query, adminID)
	return err
}

// ListSessions returns the account's session list, newest first.
func (r *AdminRepository) ListSessions(ctx context.Context, adminID int64) ([]*admin.Session, error) {
	query := `
		SELECT id, admin_id, token_ref, device, ip_address, user_agent, created_at, expires_at
		FROM admin_sessions
		WHERE admin_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*admin.Session
	for rows.Next() {
		var s admin.Session
		if err := rows.Scan(&s.ID, &s.AdminID, &s.TokenRef, &s.Device, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

// RemoveAllSessions clears the session list, used when a password reset
// invalidates everything outstanding.
func (r *AdminRepository) RemoveAllSessions(ctx context.Context, adminID int64) error {
	query := `DELETE FROM admin_sessions WHERE admin_id = $1`
	_, err := r.db.Exec(ctx, query, adminID)
	return err
}

// ========== Login History ==========

// AddLoginHistory appends an attempt record and trims the window to the
// cap, oldest first.
func (r *AdminRepository) AddLoginHistory(ctx context.Context, attempt *admin.LoginAttempt) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO admin_login_history (admin_id, ip_address, user_agent, success)
		VALUES ($1, $2, $3, $4)
		RETURNING id, at
	`
	if err := tx.QueryRow(ctx, insert,
		attempt.AdminID, attempt.IPAddress, attempt.UserAgent, attempt.Success,
	).Scan(&attempt.ID, &attempt.At); err != nil {
		return fmt.Errorf("failed to insert login history: %w", err)
	}

	trim := `
		DELETE FROM admin_login_history
		WHERE admin_id = $1 AND id NOT IN (
			SELECT id FROM admin_login_history
			WHERE admin_id = $1
			ORDER BY at DESC, id DESC
			LIMIT $2
		)
	`
	if _, err := tx.Exec(ctx, trim, attempt.AdminID, admin.MaxLoginHistory); err != nil {
		return fmt.Errorf("failed to trim login history: %w", err)
	}

	return tx.Commit(ctx)
}

// ListLoginHistory returns the newest attempts up to limit.
func (r *AdminRepository) ListLoginHistory(ctx context.Context, adminID int64, limit int) ([]*admin.LoginAttempt, error) {
	if limit <= 0 || limit > admin.MaxLoginHistory {
		limit = admin.MaxLoginHistory
	}
	query := `
		SELECT id, admin_id, at, ip_address, user_agent, success
		FROM admin_login_history
		WHERE admin_id = $1
		ORDER BY at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, adminID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login history: %w", err)
	}
	defer rows.Close()

	var attempts []*admin.LoginAttempt
	for rows.Next() {
		var a admin.LoginAttempt
		if err := rows.Scan(&a.ID, &a.AdminID, &a.At, &a.IPAddress, &a.UserAgent, &a.Success); err != nil {
			return nil, fmt.Errorf("failed to scan login history: %w", err)
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}
