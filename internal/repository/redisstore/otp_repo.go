// internal/repository/redisstore/otp_repo.go
package redisstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"leadhub-service/internal/domain/otp"
	xerrors "leadhub-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// OTPRepository stores one-time codes as a single Redis hash per email, with
// the key's TTL carrying the expiry. One key per email makes the
// single-active-code-per-email policy structural: issuing any code replaces
// whatever was outstanding, regardless of purpose. Attempt counting uses
// HINCRBY so concurrent verifications for the same email serialize in Redis.
type OTPRepository struct {
	client redis.Cmdable
}

func NewOTPRepository(client redis.Cmdable) *OTPRepository {
	return &OTPRepository{client: client}
}

var _ otp.Repository = (*OTPRepository)(nil)

// Issue deletes all prior codes for the email and stores a fresh 6-digit
// code expiring after ttl. DEL + HSET + PEXPIRE run in one transactional
// pipeline so a concurrent issuer can never observe two live codes.
func (r *OTPRepository) Issue(ctx context.Context, email, purpose string, ttl time.Duration, reqCtx otp.RequesterContext) (*otp.Code, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	record := &otp.Code{
		Email:     strings.ToLower(email),
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		Attempts:  0,
		Verified:  false,
		IPAddress: reqCtx.IPAddress,
		UserAgent: reqCtx.UserAgent,
		CreatedAt: now,
	}

	key := r.key(email)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"code":       record.Code,
		"purpose":    record.Purpose,
		"expires_at": record.ExpiresAt.UnixMilli(),
		"attempts":   0,
		"ip":         record.IPAddress,
		"ua":         record.UserAgent,
		"created_at": record.CreatedAt.UnixMilli(),
	})
	pipe.PExpire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	return record, nil
}

// Find returns the current unexpired code for the email.
func (r *OTPRepository) Find(ctx context.Context, email string) (*otp.Code, error) {
	record, err := r.load(ctx, email)
	if err != nil {
		return nil, err
	}
	if record.Expired(time.Now()) {
		return nil, xerrors.ErrNotFound
	}
	return record, nil
}

// Verify checks candidate against the stored code for the email. The
// attempt counter is incremented and persisted before any value comparison,
// so a correct code submitted past the ceiling is still rejected. A missing
// record means the code expired or was superseded; that surfaces as
// ErrCodeExpired so clients know to request a new one.
func (r *OTPRepository) Verify(ctx context.Context, email, candidate string, maxAttempts int) (*otp.Code, error) {
	record, err := r.load(ctx, email)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrCodeExpired
	}
	if err != nil {
		return nil, err
	}

	if record.Verified {
		return nil, xerrors.ErrCodeAlreadyUsed
	}
	if record.Expired(time.Now()) {
		return nil, xerrors.ErrCodeExpired
	}

	key := r.key(email)

	// HINCRBY on a key whose TTL fired after the load would recreate it as
	// a bare hash with no expiry. Pairing it with PTTL in one MULTI/EXEC
	// detects that, and the stray key is discarded.
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, "attempts", 1)
		pttl = pipe.PTTL(ctx, key)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to count attempt: %w", err)
	}
	if pttl.Val() < 0 {
		r.client.Del(ctx, key)
		return nil, xerrors.ErrCodeExpired
	}

	attempts := incr.Val()
	record.Attempts = int(attempts)
	if attempts > int64(maxAttempts) {
		return nil, xerrors.ErrAttemptsExceeded
	}

	if candidate != record.Code {
		return nil, xerrors.ErrCodeInvalid
	}

	// The verified field is absent until set, so HSETNX makes the flag
	// winner-takes-all when two correct submissions race past the check
	// above.
	won, err := r.client.HSetNX(ctx, key, "verified", 1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to mark code verified: %w", err)
	}
	if !won {
		return nil, xerrors.ErrCodeAlreadyUsed
	}
	record.Verified = true

	return record, nil
}

// ========== Helpers ==========

func (r *OTPRepository) key(email string) string {
	return "otp:" + strings.ToLower(email)
}

func (r *OTPRepository) load(ctx context.Context, email string) (*otp.Code, error) {
	fields, err := r.client.HGetAll(ctx, r.key(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load code: %w", err)
	}
	if len(fields) == 0 {
		return nil, xerrors.ErrNotFound
	}

	attempts, _ := strconv.Atoi(fields["attempts"])
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt code record for %s: %w", email, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt code record for %s: %w", email, err)
	}

	return &otp.Code{
		Email:     strings.ToLower(email),
		Code:      fields["code"],
		Purpose:   fields["purpose"],
		ExpiresAt: time.UnixMilli(expiresAt),
		Attempts:  attempts,
		Verified:  fields["verified"] == "1",
		IPAddress: fields["ip"],
		UserAgent: fields["ua"],
		CreatedAt: time.UnixMilli(createdAt),
	}, nil
}

// generateCode draws each digit independently from crypto/rand so the code
// is uniform over the full 6-digit space.
func generateCode() (string, error) {
	var b strings.Builder
	for i := 0; i < otp.CodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
