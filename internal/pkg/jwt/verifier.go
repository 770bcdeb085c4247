// internal/pkg/jwt/verifier.go
package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure taxonomy. Expired is distinct so callers can tell a
// stale token from a forged or mangled one.
var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
)

type Verifier struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
}

func NewVerifier(accessSecret, refreshSecret []byte, issuer, audience string) *Verifier {
	return &Verifier{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		issuer:        issuer,
		audience:      audience,
	}
}

// VerifyAccessToken validates signature, lifetime, issuer/audience and that
// the token is an access token. No revocation list is consulted; revocation
// is the request gate's per-call re-check of the account.
func (v *Verifier) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := v.verify(tokenString, v.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != UseAccess {
		return nil, fmt.Errorf("%w: not an access token", ErrMalformed)
	}
	return claims, nil
}

// VerifyRefreshToken validates a refresh token against the refresh secret.
func (v *Verifier) VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := v.verify(tokenString, v.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != UseRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", ErrMalformed)
	}
	return claims, nil
}

func (v *Verifier) verify(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt verifier has no secret")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrMalformed)
	}

	if claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: invalid issuer %q", ErrMalformed, claims.Issuer)
	}
	if !claims.VerifyAudience(v.audience, true) {
		return nil, fmt.Errorf("%w: invalid audience", ErrMalformed)
	}

	return claims, nil
}
