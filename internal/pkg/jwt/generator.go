// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// TokenSubject is the minimal identity a token is minted for.
type TokenSubject struct {
	AdminID int64
	Email   string
	Role    string
}

type Generator struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewGenerator(accessSecret, refreshSecret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) *Generator {
	return &Generator{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		issuer:        issuer,
		audience:      audience,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

// AccessToken mints a signed access token embedding admin id, email, role
// and the login time. Returns the token and its jti (the session token
// reference persisted for audit).
func (g *Generator) AccessToken(sub TokenSubject, loginAt time.Time) (string, string, error) {
	if len(g.accessSecret) == 0 {
		return "", "", fmt.Errorf("jwt generator has no access secret")
	}
	claims := &Claims{
		AdminID:  sub.AdminID,
		Email:    sub.Email,
		Role:     sub.Role,
		TokenUse: UseAccess,
		LoginAt:  jwt.NewNumericDate(loginAt),
	}
	return g.sign(claims, sub.AdminID, g.AccessTTL, g.accessSecret)
}

// RefreshToken mints a signed refresh token carrying the admin id only,
// with a distinct secret and a longer lifetime.
func (g *Generator) RefreshToken(adminID int64) (string, string, error) {
	if len(g.refreshSecret) == 0 {
		return "", "", fmt.Errorf("jwt generator has no refresh secret")
	}
	claims := &Claims{
		AdminID:  adminID,
		TokenUse: UseRefresh,
	}
	return g.sign(claims, adminID, g.RefreshTTL, g.refreshSecret)
}

func (g *Generator) sign(claims *Claims, adminID int64, ttl time.Duration, secret []byte) (string, string, error) {
	now := time.Now()
	jti := ulid.Make().String()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    g.issuer,
		Subject:   fmt.Sprintf("%d", adminID),
		Audience:  []string{g.audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        jti,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	return signed, jti, err
}
