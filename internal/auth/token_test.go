package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/marketplace-api/internal/domain"
)

const testSecret = "unit-test-secret"

func newTestTokenManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(testSecret, ttl)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	tm := newTestTokenManager(10 * time.Hour)

	token, expiresAt, err := tm.Issue("alice", domain.RoleSeller)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Username != "alice" {
		t.Fatalf("username = %q, want alice", identity.Username)
	}
	if identity.Role != domain.RoleSeller {
		t.Fatalf("role = %q, want SELLER", identity.Role)
	}
	if !identity.ExpiresAt.Equal(expiresAt.Truncate(time.Second)) {
		t.Fatalf("expiry = %v, want %v", identity.ExpiresAt, expiresAt.Truncate(time.Second))
	}
}

func TestVerifyExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Hour

	tm := newTestTokenManager(ttl)
	tm.now = func() time.Time { return issuedAt }

	token, _, err := tm.Issue("alice", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"just issued", issuedAt, nil},
		{"mid window", issuedAt.Add(ttl / 2), nil},
		{"one second before expiry", issuedAt.Add(ttl - time.Second), nil},
		{"exactly at expiry", issuedAt.Add(ttl), ErrTokenExpired},
		{"after expiry", issuedAt.Add(ttl + time.Minute), ErrTokenExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tm.now = func() time.Time { return tc.at }
			_, err := tm.Verify(token)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("verify at %v: err = %v, want %v", tc.at, err, tc.wantErr)
			}
		})
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	tm := newTestTokenManager(time.Hour)
	token, _, err := tm.Issue("alice", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	sig := parts[2]

	for i := 0; i < len(sig); i++ {
		// Replacement chosen so the decoded bytes always change, even for
		// the final character whose low bits are unused.
		replacement := byte('A')
		if sig[i] >= 'A' && sig[i] <= 'D' {
			replacement = 'Q'
		}
		tampered := parts[0] + "." + parts[1] + "." + sig[:i] + string(replacement) + sig[i+1:]

		_, err := tm.Verify(tampered)
		if !errors.Is(err, ErrTokenInvalidSignature) {
			t.Fatalf("byte %d: err = %v, want %v", i, err, ErrTokenInvalidSignature)
		}
	}

	// Bytes outside the base64url alphabet make the signature undecodable;
	// the header and payload are untouched, so this is still a signature
	// failure, not a malformed token.
	for i := 0; i < len(sig); i++ {
		tampered := parts[0] + "." + parts[1] + "." + sig[:i] + "!" + sig[i+1:]

		_, err := tm.Verify(tampered)
		if !errors.Is(err, ErrTokenInvalidSignature) {
			t.Fatalf("non-alphabet byte %d: err = %v, want %v", i, err, ErrTokenInvalidSignature)
		}
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tm := newTestTokenManager(time.Hour)
	other := NewTokenManager("a-different-secret", time.Hour)

	token, _, err := other.Issue("alice", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tm.Verify(token); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Fatalf("err = %v, want %v", err, ErrTokenInvalidSignature)
	}
}

func TestVerifyMalformed(t *testing.T) {
	tm := newTestTokenManager(time.Hour)

	for _, token := range []string{
		"",
		"garbage",
		"only.two",
		"a.b.c.d",
		"!!!.???.###",
	} {
		if _, err := tm.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q): err = %v, want %v", token, err, ErrTokenMalformed)
		}
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	tm := newTestTokenManager(time.Hour)

	claims := &Claims{
		Role: string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := tm.Verify(token); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	tm := newTestTokenManager(time.Hour)

	claims := &Claims{
		Role: "SUPERUSER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := signed.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := tm.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("err = %v, want %v", err, ErrTokenMalformed)
	}
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	tm := newTestTokenManager(time.Hour)

	claims := &Claims{
		Role: string(domain.RoleCustomer),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "alice",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := signed.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := tm.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("err = %v, want %v", err, ErrTokenMalformed)
	}
}
