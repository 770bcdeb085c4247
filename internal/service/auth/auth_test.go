package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"leadhub-service/internal/domain/admin"
	"leadhub-service/internal/domain/otp"
	xerrors "leadhub-service/internal/pkg/errors"
	"leadhub-service/internal/pkg/jwt"
	"leadhub-service/internal/repository/mock"
	"leadhub-service/internal/repository/redisstore"
)

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// fakeSender captures outgoing emails; set err to simulate delivery failure.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testEnv struct {
	service *AuthService
	repo    *mock.AdminRepository
	codes   otp.Repository
	sender  *fakeSender
	mr      *miniredis.Miniredis
}

func testPolicy() Policy {
	return Policy{
		MaxLoginAttempts: 5,
		LockTime:         30 * time.Minute,
		OTPExpiry:        5 * time.Minute,
		MaxOTPAttempts:   3,
		ResendDelay:      time.Minute,
		HashCost:         bcrypt.MinCost,
		ResetTokenExpiry: time.Hour,
		BaseURL:          "https://admin.leadhub.test",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	manager, err := jwt.Build(jwt.Config{
		AccessSecret:  "access-secret-for-unit-tests-0123456789",
		RefreshSecret: "refresh-secret-for-unit-tests-0123456789",
		Issuer:        "leadhub-admin",
		Audience:      "leadhub-panel",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("jwt.Build failed: %v", err)
	}

	repo := mock.NewAdminRepository()
	codes := redisstore.NewOTPRepository(client)
	sender := &fakeSender{}

	service := NewAuthService(repo, codes, manager, sender, testPolicy(), zap.NewNop())

	return &testEnv{service: service, repo: repo, codes: codes, sender: sender, mr: mr}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(hashed)
}

func testAdmin(t *testing.T) *admin.Admin {
	return &admin.Admin{
		ID:           1,
		FullName:     "Ops Admin",
		Email:        "ops@leadhub.app",
		Role:         admin.RoleAdmin,
		IsActive:     true,
		PasswordHash: hashPassword(t, "correct-horse-battery"),
	}
}

func reqCtx() admin.RequestContext {
	return admin.RequestContext{Device: "test-device", IPAddress: "10.0.0.1", UserAgent: "test-agent"}
}

// wrongCode returns a six-digit code guaranteed to differ from the one
// currently stored for the email.
func wrongCode(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	stored, err := env.codes.Find(context.Background(), email)
	if err != nil {
		t.Fatalf("no code stored for %s: %v", email, err)
	}
	if stored.Code == "000000" {
		return "000001"
	}
	return "000000"
}

// ========== Password Login ==========

func TestPasswordLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		if email != "ops@leadhub.app" {
			return nil, xerrors.ErrNotFound
		}
		return adm, nil
	}

	result, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
		Email:    "Ops@LeadHub.App",
		Password: "correct-horse-battery",
	}, reqCtx())
	if err != nil {
		t.Fatalf("PasswordLogin failed: %v", err)
	}

	if result.TwoFactorRequired {
		t.Fatal("unexpected two-factor challenge")
	}
	login := result.Login
	if login == nil || login.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if login.RefreshToken != "" {
		t.Error("the password step must not carry a refresh token")
	}
	if login.TokenType != "Bearer" {
		t.Errorf("token type = %q", login.TokenType)
	}
	if login.Admin.ID != 1 || login.Admin.Email != "ops@leadhub.app" {
		t.Errorf("admin info = %+v", login.Admin)
	}

	if len(env.repo.Calls["AddSession"]) != 1 {
		t.Error("expected one session to be recorded")
	}
	if len(env.repo.Calls["RecordSuccessfulLogin"]) != 1 {
		t.Error("expected successful login to be recorded")
	}
	if len(env.repo.Calls["AddLoginHistory"]) != 1 {
		t.Error("expected one history entry")
	}
}

func TestPasswordLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}
	env.repo.RecordFailedAttemptFunc = func(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
		return 1, nil, nil
	}

	_, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
		Email:    "ops@leadhub.app",
		Password: "wrong",
	}, reqCtx())
	if !xerrors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if len(env.repo.Calls["RecordFailedAttempt"]) != 1 {
		t.Error("expected failed attempt to be recorded")
	}
	if len(env.repo.Calls["AddLoginHistory"]) != 1 {
		t.Error("expected failed attempt in history")
	}
	if len(env.repo.Calls["AddSession"]) != 0 {
		t.Error("no session should be recorded on failure")
	}
}

func TestPasswordLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return nil, xerrors.ErrNotFound
	}

	_, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
		Email:    "nobody@leadhub.app",
		Password: "whatever",
	}, reqCtx())
	if !xerrors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestPasswordLoginLockoutOnFifthFailure(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}
	lockedUntil := time.Now().Add(30 * time.Minute)
	env.repo.RecordFailedAttemptFunc = func(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
		return 5, &lockedUntil, nil
	}

	_, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
		Email:    "ops@leadhub.app",
		Password: "wrong",
	}, reqCtx())

	locked, ok := xerrors.AsAccountLocked(err)
	if !ok {
		t.Fatalf("expected AccountLockedError, got %v", err)
	}
	if locked.RetryAfter <= 29*time.Minute || locked.RetryAfter > 30*time.Minute {
		t.Errorf("retry after = %v, want about 30m", locked.RetryAfter)
	}
}

func TestPasswordLoginLockedRejectsCorrectPassword(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	lockedUntil := time.Now().Add(10 * time.Minute)
	adm.LockedUntil = &lockedUntil
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	_, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
		Email:    "ops@leadhub.app",
		Password: "correct-horse-battery",
	}, reqCtx())

	locked, ok := xerrors.AsAccountLocked(err)
	if !ok {
		t.Fatalf("expected AccountLockedError despite correct password, got %v", err)
	}
	if locked.RetryAfter <= 0 {
		t.Errorf("retry after = %v, want positive", locked.RetryAfter)
	}
	if len(env.repo.Calls["RecordFailedAttempt"]) != 0 {
		t.Error("a locked login must not count as a new failed attempt")
	}
}

// ========== Two-Factor ==========

func TestPasswordLoginWithTwoFactorIssuesChallenge(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	adm.TwoFactorEnabled = true
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	result, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
		Email:    "ops@leadhub.app",
		Password: "correct-horse-battery",
	}, reqCtx())
	if err != nil {
		t.Fatalf("PasswordLogin failed: %v", err)
	}

	if !result.TwoFactorRequired {
		t.Fatal("expected a two-factor challenge")
	}
	if result.Login != nil {
		t.Fatal("no tokens may be issued before the second factor")
	}
	if env.sender.count() != 1 {
		t.Fatalf("expected one code email, got %d", env.sender.count())
	}

	code, err := env.codes.Find(context.Background(), "ops@leadhub.app")
	if err != nil {
		t.Fatalf("code not stored: %v", err)
	}
	if code.Purpose != otp.PurposeTwoFactor {
		t.Errorf("purpose = %q, want %q", code.Purpose, otp.PurposeTwoFactor)
	}

	// The second step completes the login
	login, err := env.service.VerifyLoginCode(context.Background(), &admin.VerifyCodeRequest{
		Email: "ops@leadhub.app",
		Code:  code.Code,
	}, reqCtx())
	if err != nil {
		t.Fatalf("VerifyLoginCode failed: %v", err)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("expected tokens after second factor")
	}
}

// ========== Passwordless Login ==========

func TestRequestAndVerifyLoginCode(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	if err := env.service.RequestLoginCode(context.Background(), &admin.RequestCodeRequest{
		Email: "ops@leadhub.app",
	}, reqCtx()); err != nil {
		t.Fatalf("RequestLoginCode failed: %v", err)
	}

	code, err := env.codes.Find(context.Background(), "ops@leadhub.app")
	if err != nil {
		t.Fatalf("code not stored: %v", err)
	}
	if code.Purpose != otp.PurposeLogin {
		t.Errorf("purpose = %q", code.Purpose)
	}

	login, err := env.service.VerifyLoginCode(context.Background(), &admin.VerifyCodeRequest{
		Email: "ops@leadhub.app",
		Code:  code.Code,
	}, reqCtx())
	if err != nil {
		t.Fatalf("VerifyLoginCode failed: %v", err)
	}
	if login.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if login.RefreshToken == "" {
		t.Fatal("code verification must issue a refresh token")
	}
}

func TestRequestLoginCodeUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return nil, xerrors.ErrNotFound
	}

	err := env.service.RequestLoginCode(context.Background(), &admin.RequestCodeRequest{
		Email: "nobody@leadhub.app",
	}, reqCtx())
	if !xerrors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("an unknown address must look like a bad credential, got %v", err)
	}
	if env.sender.count() != 0 {
		t.Error("no email may be sent for an unknown address")
	}
}

func TestVerifyLoginCodeFailureCountsFailedAttempt(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	if err := env.service.RequestLoginCode(context.Background(), &admin.RequestCodeRequest{
		Email: "ops@leadhub.app",
	}, reqCtx()); err != nil {
		t.Fatalf("RequestLoginCode failed: %v", err)
	}

	_, err := env.service.VerifyLoginCode(context.Background(), &admin.VerifyCodeRequest{
		Email: "ops@leadhub.app",
		Code:  wrongCode(t, env, "ops@leadhub.app"),
	}, reqCtx())
	if !xerrors.Is(err, xerrors.ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}

	if len(env.repo.Calls["RecordFailedAttempt"]) != 1 {
		t.Error("a failed code verification must count toward the lockout")
	}
	if len(env.repo.Calls["AddLoginHistory"]) != 1 {
		t.Error("expected the failure in login history")
	}
}

func TestVerifyLoginCodeFailureCanLockAccount(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}
	lockedUntil := time.Now().Add(30 * time.Minute)
	env.repo.RecordFailedAttemptFunc = func(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
		return 5, &lockedUntil, nil
	}

	if err := env.service.RequestLoginCode(context.Background(), &admin.RequestCodeRequest{
		Email: "ops@leadhub.app",
	}, reqCtx()); err != nil {
		t.Fatalf("RequestLoginCode failed: %v", err)
	}

	_, err := env.service.VerifyLoginCode(context.Background(), &admin.VerifyCodeRequest{
		Email: "ops@leadhub.app",
		Code:  wrongCode(t, env, "ops@leadhub.app"),
	}, reqCtx())
	locked, ok := xerrors.AsAccountLocked(err)
	if !ok {
		t.Fatalf("expected AccountLockedError when the counter reaches the limit, got %v", err)
	}
	if locked.RetryAfter <= 0 {
		t.Errorf("retry after = %v, want positive", locked.RetryAfter)
	}
}

func TestResendCodeThrottled(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	if err := env.service.RequestLoginCode(context.Background(), &admin.RequestCodeRequest{
		Email: "ops@leadhub.app",
	}, reqCtx()); err != nil {
		t.Fatalf("RequestLoginCode failed: %v", err)
	}

	err := env.service.ResendCode(context.Background(), &admin.RequestCodeRequest{
		Email: "ops@leadhub.app",
	}, reqCtx())
	limited, ok := xerrors.AsRateLimited(err)
	if !ok {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if limited.RetryAfter <= 0 || limited.RetryAfter > time.Minute {
		t.Errorf("retry after = %v, want within the resend delay", limited.RetryAfter)
	}
	if env.sender.count() != 1 {
		t.Errorf("throttled resend must not send another email, sent=%d", env.sender.count())
	}
}

func TestCodeDeliveryFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}
	env.sender.err = errors.New("smtp connection refused")

	err := env.service.RequestLoginCode(context.Background(), &admin.RequestCodeRequest{
		Email: "ops@leadhub.app",
	}, reqCtx())
	if !xerrors.Is(err, xerrors.ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
}

func TestVerifyLoginCodeRejectsResetPurpose(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	issued, err := env.codes.Issue(context.Background(), "ops@leadhub.app", otp.PurposePasswordReset, 5*time.Minute, otp.RequesterContext{})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = env.service.VerifyLoginCode(context.Background(), &admin.VerifyCodeRequest{
		Email: "ops@leadhub.app",
		Code:  issued.Code,
	}, reqCtx())
	if !xerrors.Is(err, xerrors.ErrCodeInvalid) {
		t.Fatalf("a reset code must never mint tokens, got %v", err)
	}
}

// ========== Password Management ==========

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindByIDFunc = func(ctx context.Context, id int64) (*admin.Admin, error) {
		return adm, nil
	}

	var storedHash string
	env.repo.UpdatePasswordFunc = func(ctx context.Context, id int64, passwordHash string) error {
		storedHash = passwordHash
		return nil
	}

	err := env.service.ChangePassword(context.Background(), 1, &admin.ChangePasswordRequest{
		CurrentPassword: "correct-horse-battery",
		NewPassword:     "new-password-123",
	})
	if err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("new-password-123")) != nil {
		t.Error("stored hash does not match the new password")
	}
	if len(env.repo.Calls["RemoveAllSessions"]) != 1 {
		t.Error("expected all sessions to be dropped")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindByIDFunc = func(ctx context.Context, id int64) (*admin.Admin, error) {
		return adm, nil
	}

	err := env.service.ChangePassword(context.Background(), 1, &admin.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password-123",
	})
	if !xerrors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(env.repo.Calls["UpdatePassword"]) != 0 {
		t.Error("password must not change with a wrong current password")
	}
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	env := newTestEnv(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return nil, xerrors.ErrNotFound
	}

	if err := env.service.ForgotPassword(context.Background(), &admin.ForgotPasswordRequest{
		Email: "nobody@leadhub.app",
	}); err != nil {
		t.Fatalf("ForgotPassword must not reveal unknown emails, got %v", err)
	}
	if len(env.repo.Calls["SetPasswordResetToken"]) != 0 {
		t.Error("no token may be stored for an unknown email")
	}
}

func TestForgotPasswordStoresToken(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	var storedToken string
	var storedExpiry time.Time
	env.repo.SetPasswordResetTokenFunc = func(ctx context.Context, id int64, token string, expiresAt time.Time) error {
		storedToken = token
		storedExpiry = expiresAt
		return nil
	}

	if err := env.service.ForgotPassword(context.Background(), &admin.ForgotPasswordRequest{
		Email: "ops@leadhub.app",
	}); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	if storedToken == "" {
		t.Fatal("expected a reset token to be stored")
	}
	until := time.Until(storedExpiry)
	if until <= 59*time.Minute || until > time.Hour {
		t.Errorf("token expiry in %v, want about 1h", until)
	}
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindByResetTokenFunc = func(ctx context.Context, token string) (*admin.Admin, error) {
		if token != "valid-token" {
			return nil, xerrors.ErrNotFound
		}
		return adm, nil
	}

	err := env.service.ResetPassword(context.Background(), &admin.ResetPasswordRequest{
		Token:       "bogus",
		NewPassword: "new-password-123",
	})
	if !xerrors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a bad token, got %v", err)
	}

	err = env.service.ResetPassword(context.Background(), &admin.ResetPasswordRequest{
		Token:       "valid-token",
		NewPassword: "new-password-123",
	})
	if err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if len(env.repo.Calls["UpdatePassword"]) != 1 {
		t.Error("expected password update")
	}
	if len(env.repo.Calls["ClearPasswordResetToken"]) != 1 {
		t.Error("the token must be single use")
	}
	if len(env.repo.Calls["RemoveAllSessions"]) != 1 {
		t.Error("expected all sessions to be dropped")
	}
}

// ========== Session Bookkeeping ==========

func TestSessionWindowEvictsOldest(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindActiveByEmailFunc = func(ctx context.Context, email string) (*admin.Admin, error) {
		return adm, nil
	}

	for i := 0; i < admin.MaxSessions+2; i++ {
		result, err := env.service.PasswordLogin(context.Background(), &admin.LoginRequest{
			Email:    "ops@leadhub.app",
			Password: "correct-horse-battery",
			Device:   fmt.Sprintf("device-%02d", i),
		}, reqCtx())
		if err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
		if result.Login == nil {
			t.Fatalf("login %d returned no tokens", i)
		}
	}

	if len(env.repo.Sessions) != admin.MaxSessions {
		t.Fatalf("session window holds %d entries, want %d", len(env.repo.Sessions), admin.MaxSessions)
	}
	if got := env.repo.Sessions[0].Device; got != "device-02" {
		t.Errorf("oldest surviving session = %q, want the first two evicted", got)
	}
	if got := env.repo.Sessions[len(env.repo.Sessions)-1].Device; got != fmt.Sprintf("device-%02d", admin.MaxSessions+1) {
		t.Errorf("newest session = %q", got)
	}
}

// ========== Admin Management ==========

func TestDeactivateAdmin(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	env.repo.FindByIDFunc = func(ctx context.Context, id int64) (*admin.Admin, error) {
		return adm, nil
	}

	if err := env.service.DeactivateAdmin(context.Background(), 1); err != nil {
		t.Fatalf("DeactivateAdmin failed: %v", err)
	}
	if len(env.repo.Calls["Deactivate"]) != 1 {
		t.Error("expected the account to be deactivated")
	}
	if len(env.repo.Calls["RemoveAllSessions"]) != 1 {
		t.Error("expected sessions to be dropped")
	}
}

func TestDeactivateAdminRefusesSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	adm := testAdmin(t)
	adm.Role = admin.RoleSuperAdmin
	env.repo.FindByIDFunc = func(ctx context.Context, id int64) (*admin.Admin, error) {
		return adm, nil
	}

	err := env.service.DeactivateAdmin(context.Background(), 1)
	if !xerrors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(env.repo.Calls["Deactivate"]) != 0 {
		t.Error("a super admin account must not be deactivated")
	}
}

// ========== Bootstrap ==========

func TestEnsureSuperAdminExists(t *testing.T) {
	env := newTestEnv(t)

	var created *admin.Admin
	env.repo.CreateFunc = func(ctx context.Context, a *admin.Admin) error {
		created = a
		return nil
	}

	if err := env.service.EnsureSuperAdminExists(context.Background(), "Root@LeadHub.App", "bootstrap-pass", "Root"); err != nil {
		t.Fatalf("EnsureSuperAdminExists failed: %v", err)
	}

	if created == nil {
		t.Fatal("expected the super admin to be created")
	}
	if created.Role != admin.RoleSuperAdmin || !created.IsActive {
		t.Errorf("created = %+v", created)
	}
	if created.Email != "root@leadhub.app" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("bootstrap-pass")) != nil {
		t.Error("stored hash does not match the bootstrap password")
	}
}

func TestEnsureSuperAdminSkipsWhenPresent(t *testing.T) {
	env := newTestEnv(t)
	env.repo.SuperAdminExistsFunc = func(ctx context.Context) (bool, error) {
		return true, nil
	}

	if err := env.service.EnsureSuperAdminExists(context.Background(), "root@leadhub.app", "bootstrap-pass", "Root"); err != nil {
		t.Fatalf("EnsureSuperAdminExists failed: %v", err)
	}
	if len(env.repo.Calls["Create"]) != 0 {
		t.Error("no account may be created when a super admin exists")
	}
}
