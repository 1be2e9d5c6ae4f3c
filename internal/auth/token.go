package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-api/internal/domain"
)

// Token verification failures. A token is either entirely valid or rejected
// with exactly one of these reasons; parsing stops at the first failed stage.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// TokenManager issues and verifies signed, self-contained tokens. The secret
// is loaded once at startup and read concurrently without synchronization;
// nothing here mutates after construction.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 10 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes the signed JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for the subject. Expiry is issuance time plus the
// fixed TTL.
func (tm *TokenManager) Issue(username string, role domain.Role) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks structure, signature and expiry in that order and returns the
// embedded identity. Signature comparison is constant-time (HMAC). The call is
// side-effect free apart from reading the clock.
func (tm *TokenManager) Verify(tokenStr string) (*domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalidSignature
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			// The library reports an undecodable signature segment as a
			// malformed token. When the header and payload are still intact
			// the damage can only sit in the signature, and the failure is a
			// signature failure.
			if signatureOnlyDamage(tokenStr) {
				return nil, ErrTokenInvalidSignature
			}
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenInvalidSignature):
			return nil, ErrTokenInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrTokenMalformed
	}
	// The library treats now == exp as still valid; the validity window here
	// is half-open, so the boundary instant must be rejected.
	if !tm.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	role, roleErr := domain.ParseRole(claims.Role)
	if roleErr != nil {
		return nil, ErrTokenMalformed
	}

	return &domain.Identity{
		Username:  claims.Subject,
		Role:      role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// signatureOnlyDamage reports whether the header and payload segments of a
// rejected token are still valid base64url-encoded JSON, leaving the
// signature segment as the only possible source of a parse failure.
func signatureOnlyDamage(tokenStr string) bool {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 || parts[2] == "" {
		return false
	}
	for _, seg := range parts[:2] {
		raw, err := base64.RawURLEncoding.DecodeString(seg)
		if err != nil || !json.Valid(raw) {
			return false
		}
	}
	return true
}
