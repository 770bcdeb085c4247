// internal/repository/mock/admin_repository.go
package mock

import (
	"context"
	"time"

	"leadhub-service/internal/domain/admin"
)

// AdminRepository is a func-stub mock of admin.Repository for tests.
// Override the *Func fields the test cares about; unset stubs return zero
// values, except the session methods, which fall back to the in-memory
// Sessions window with the same cap and eviction order as the SQL store.
// Calls records every invocation by method name.
type AdminRepository struct {
	CreateFunc                func(ctx context.Context, a *admin.Admin) error
	FindActiveByEmailFunc     func(ctx context.Context, email string) (*admin.Admin, error)
	FindByIDFunc              func(ctx context.Context, id int64) (*admin.Admin, error)
	ExistsByEmailFunc         func(ctx context.Context, email string) (bool, error)
	SuperAdminExistsFunc      func(ctx context.Context) (bool, error)
	DeactivateFunc            func(ctx context.Context, id int64) error
	RecordFailedAttemptFunc   func(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error)
	RecordSuccessfulLoginFunc func(ctx context.Context, id int64) error
	UpdatePasswordFunc        func(ctx context.Context, id int64, passwordHash string) error
	SetTwoFactorFunc          func(ctx context.Context, id int64, enabled bool) error
	SetPasswordResetTokenFunc func(ctx context.Context, id int64, token string, expiresAt time.Time) error
	FindByResetTokenFunc      func(ctx context.Context, token string) (*admin.Admin, error)
	ClearResetTokenFunc       func(ctx context.Context, id int64) error
	AddSessionFunc            func(ctx context.Context, s *admin.Session) error
	RemoveSessionFunc         func(ctx context.Context, adminID int64, tokenRef string) error
	RemoveAllSessionsFunc     func(ctx context.Context, adminID int64) error
	PruneExpiredSessionsFunc  func(ctx context.Context, adminID int64) error
	ListSessionsFunc          func(ctx context.Context, adminID int64) ([]*admin.Session, error)
	AddLoginHistoryFunc       func(ctx context.Context, attempt *admin.LoginAttempt) error
	ListLoginHistoryFunc      func(ctx context.Context, adminID int64, limit int) ([]*admin.LoginAttempt, error)

	// Sessions is the default in-memory session store, oldest first.
	Sessions []*admin.Session

	Calls map[string][]interface{}
}

// NewAdminRepository creates a new mock admin repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{Calls: make(map[string][]interface{})}
}

func (m *AdminRepository) record(method string, args ...interface{}) {
	m.Calls[method] = append(m.Calls[method], args)
}

func (m *AdminRepository) Create(ctx context.Context, a *admin.Admin) error {
	m.record("Create", a)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return nil
}

func (m *AdminRepository) FindActiveByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	m.record("FindActiveByEmail", email)
	if m.FindActiveByEmailFunc != nil {
		return m.FindActiveByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *AdminRepository) FindByID(ctx context.Context, id int64) (*admin.Admin, error) {
	m.record("FindByID", id)
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.record("ExistsByEmail", email)
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *AdminRepository) SuperAdminExists(ctx context.Context) (bool, error) {
	m.record("SuperAdminExists")
	if m.SuperAdminExistsFunc != nil {
		return m.SuperAdminExistsFunc(ctx)
	}
	return false, nil
}

func (m *AdminRepository) Deactivate(ctx context.Context, id int64) error {
	m.record("Deactivate", id)
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return nil
}

func (m *AdminRepository) RecordFailedAttempt(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	m.record("RecordFailedAttempt", id)
	if m.RecordFailedAttemptFunc != nil {
		return m.RecordFailedAttemptFunc(ctx, id, maxAttempts, lockFor)
	}
	return 0, nil, nil
}

func (m *AdminRepository) RecordSuccessfulLogin(ctx context.Context, id int64) error {
	m.record("RecordSuccessfulLogin", id)
	if m.RecordSuccessfulLoginFunc != nil {
		return m.RecordSuccessfulLoginFunc(ctx, id)
	}
	return nil
}

func (m *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.record("UpdatePassword", id, passwordHash)
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *AdminRepository) SetTwoFactor(ctx context.Context, id int64, enabled bool) error {
	m.record("SetTwoFactor", id, enabled)
	if m.SetTwoFactorFunc != nil {
		return m.SetTwoFactorFunc(ctx, id, enabled)
	}
	return nil
}

func (m *AdminRepository) SetPasswordResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	m.record("SetPasswordResetToken", id, token)
	if m.SetPasswordResetTokenFunc != nil {
		return m.SetPasswordResetTokenFunc(ctx, id, token, expiresAt)
	}
	return nil
}

func (m *AdminRepository) FindByResetToken(ctx context.Context, token string) (*admin.Admin, error) {
	m.record("FindByResetToken", token)
	if m.FindByResetTokenFunc != nil {
		return m.FindByResetTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *AdminRepository) ClearPasswordResetToken(ctx context.Context, id int64) error {
	m.record("ClearPasswordResetToken", id)
	if m.ClearResetTokenFunc != nil {
		return m.ClearResetTokenFunc(ctx, id)
	}
	return nil
}

func (m *AdminRepository) AddSession(ctx context.Context, s *admin.Session) error {
	m.record("AddSession", s)
	if m.AddSessionFunc != nil {
		return m.AddSessionFunc(ctx, s)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	m.Sessions = admin.TrimSessions(append(m.Sessions, s), admin.MaxSessions)
	return nil
}

func (m *AdminRepository) RemoveSession(ctx context.Context, adminID int64, tokenRef string) error {
	m.record("RemoveSession", adminID, tokenRef)
	if m.RemoveSessionFunc != nil {
		return m.RemoveSessionFunc(ctx, adminID, tokenRef)
	}
	kept := m.Sessions[:0]
	for _, s := range m.Sessions {
		if !(s.AdminID == adminID && s.TokenRef == tokenRef) {
			kept = append(kept, s)
		}
	}
	m.Sessions = kept
	return nil
}

func (m *AdminRepository) RemoveAllSessions(ctx context.Context, adminID int64) error {
	m.record("RemoveAllSessions", adminID)
	if m.RemoveAllSessionsFunc != nil {
		return m.RemoveAllSessionsFunc(ctx, adminID)
	}
	kept := m.Sessions[:0]
	for _, s := range m.Sessions {
		if s.AdminID != adminID {
			kept = append(kept, s)
		}
	}
	m.Sessions = kept
	return nil
}

func (m *AdminRepository) PruneExpiredSessions(ctx context.Context, adminID int64) error {
	m.record("PruneExpiredSessions", adminID)
	if m.PruneExpiredSessionsFunc != nil {
		return m.PruneExpiredSessionsFunc(ctx, adminID)
	}
	now := time.Now()
	kept := m.Sessions[:0]
	for _, s := range m.Sessions {
		if !(s.AdminID == adminID && !s.ExpiresAt.After(now)) {
			kept = append(kept, s)
		}
	}
	m.Sessions = kept
	return nil
}

func (m *AdminRepository) ListSessions(ctx context.Context, adminID int64) ([]*admin.Session, error) {
	m.record("ListSessions", adminID)
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, adminID)
	}
	// Newest first, matching the SQL ordering.
	var out []*admin.Session
	for i := len(m.Sessions) - 1; i >= 0; i-- {
		if m.Sessions[i].AdminID == adminID {
			out = append(out, m.Sessions[i])
		}
	}
	return out, nil
}

func (m *AdminRepository) AddLoginHistory(ctx context.Context, attempt *admin.LoginAttempt) error {
	m.record("AddLoginHistory", attempt)
	if m.AddLoginHistoryFunc != nil {
		return m.AddLoginHistoryFunc(ctx, attempt)
	}
	return nil
}

func (m *AdminRepository) ListLoginHistory(ctx context.Context, adminID int64, limit int) ([]*admin.LoginAttempt, error) {
	m.record("ListLoginHistory", adminID, limit)
	if m.ListLoginHistoryFunc != nil {
		return m.ListLoginHistoryFunc(ctx, adminID, limit)
	}
	return nil, nil
}

// Ensure AdminRepository implements the interface
var _ admin.Repository = (*AdminRepository)(nil)
