package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/spec-kit/marketplace-api/internal/domain"
	apperrors "github.com/spec-kit/marketplace-api/pkg/util"
)

func testRules() []AccessRule {
	return []AccessRule{
		Public(http.MethodGet, "/health/*"),
		RequireRoles(http.MethodPost, "/auth/register/admin", domain.RoleAdmin),
		Public(http.MethodPost, "/auth/register"),
		RequireRoles(http.MethodGet, "/products/mine", domain.RoleSeller, domain.RoleAdmin),
		Public(http.MethodGet, "/products"),
		Public(http.MethodGet, "/products/:id"),
		RequireRoles(http.MethodPost, "/products", domain.RoleSeller, domain.RoleAdmin),
		Authenticated("*", "/users/me"),
		RequireRoles(http.MethodGet, "/users/:id", domain.RoleAdmin),
	}
}

func identityContext(username string, role domain.Role) *SecurityContext {
	return &SecurityContext{identity: &domain.Identity{Username: username, Role: role}}
}

func assertStatus(t *testing.T, err error, wantStatus int) {
	t.Helper()
	if wantStatus == 0 {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("err = %v, want DomainError with status %d", err, wantStatus)
	}
	if domainErr.HTTPStatus != wantStatus {
		t.Fatalf("status = %d, want %d", domainErr.HTTPStatus, wantStatus)
	}
}

func TestDecide(t *testing.T) {
	engine := NewPolicyEngine(testRules())

	cases := []struct {
		name       string
		method     string
		path       string
		sc         *SecurityContext
		wantStatus int
	}{
		{"public route anonymous", http.MethodPost, "/auth/register", anonymousContext, 0},
		{"public route authenticated", http.MethodGet, "/products", identityContext("alice", domain.RoleCustomer), 0},
		{"public param route anonymous", http.MethodGet, "/products/42", anonymousContext, 0},
		{"admin route anonymous is 401 not 403", http.MethodPost, "/auth/register/admin", anonymousContext, http.StatusUnauthorized},
		{"admin route wrong role", http.MethodPost, "/auth/register/admin", identityContext("alice", domain.RoleCustomer), http.StatusForbidden},
		{"admin route seller", http.MethodPost, "/auth/register/admin", identityContext("bob", domain.RoleSeller), http.StatusForbidden},
		{"admin route admin", http.MethodPost, "/auth/register/admin", identityContext("root", domain.RoleAdmin), 0},
		{"role route seller", http.MethodPost, "/products", identityContext("bob", domain.RoleSeller), 0},
		{"role route customer", http.MethodPost, "/products", identityContext("alice", domain.RoleCustomer), http.StatusForbidden},
		{"mine beats id wildcard", http.MethodGet, "/products/mine", identityContext("alice", domain.RoleCustomer), http.StatusForbidden},
		{"mine anonymous", http.MethodGet, "/products/mine", anonymousContext, http.StatusUnauthorized},
		{"any-authenticated route anonymous", http.MethodGet, "/users/me", anonymousContext, http.StatusUnauthorized},
		{"any-authenticated route customer", http.MethodGet, "/users/me", identityContext("alice", domain.RoleCustomer), 0},
		{"unmatched route defaults to authenticated", http.MethodDelete, "/internal/debug", anonymousContext, http.StatusUnauthorized},
		{"unmatched route allows any identity", http.MethodDelete, "/internal/debug", identityContext("alice", domain.RoleCustomer), 0},
		{"method mismatch falls through", http.MethodDelete, "/auth/register", anonymousContext, http.StatusUnauthorized},
		{"wildcard prefix", http.MethodGet, "/health/ready", anonymousContext, 0},
		{"case-variant path still hits role rule", http.MethodPost, "/Auth/Register/Admin", identityContext("alice", domain.RoleCustomer), http.StatusForbidden},
		{"case-variant path anonymous is 401", http.MethodPost, "/AUTH/REGISTER/ADMIN", anonymousContext, http.StatusUnauthorized},
		{"case-variant admin passes", http.MethodPost, "/Auth/register/admin", identityContext("root", domain.RoleAdmin), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertStatus(t, engine.Decide(tc.method, tc.path, tc.sc), tc.wantStatus)
		})
	}
}

func TestDecideExpiredTokenMessage(t *testing.T) {
	engine := NewPolicyEngine(testRules())

	err := engine.Decide(http.MethodGet, "/users/me", &SecurityContext{denied: ErrTokenExpired})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("err = %v, want DomainError", err)
	}
	if domainErr.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", domainErr.HTTPStatus)
	}
	if domainErr.Message != "session expired" {
		t.Fatalf("message = %q, want %q", domainErr.Message, "session expired")
	}
}

func TestDecideInvalidTokenMessageStaysGeneric(t *testing.T) {
	engine := NewPolicyEngine(testRules())

	for _, reason := range []error{ErrTokenMalformed, ErrTokenInvalidSignature, nil} {
		err := engine.Decide(http.MethodGet, "/users/me", &SecurityContext{denied: reason})
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) {
			t.Fatalf("err = %v, want DomainError", err)
		}
		if domainErr.Message != "invalid credentials" {
			t.Fatalf("reason %v: message = %q, want %q", reason, domainErr.Message, "invalid credentials")
		}
	}
}

func TestAuthorizeOwnership(t *testing.T) {
	cases := []struct {
		name       string
		claim      OwnershipClaim
		wantStatus int
	}{
		{"owner allowed", OwnershipClaim{ResourceOwner: "alice", Caller: "alice", CallerRole: domain.RoleSeller}, 0},
		{"non-owner customer forbidden", OwnershipClaim{ResourceOwner: "bob", Caller: "alice", CallerRole: domain.RoleCustomer}, http.StatusForbidden},
		{"non-owner seller forbidden", OwnershipClaim{ResourceOwner: "bob", Caller: "alice", CallerRole: domain.RoleSeller}, http.StatusForbidden},
		{"admin allowed regardless of owner", OwnershipClaim{ResourceOwner: "bob", Caller: "root", CallerRole: domain.RoleAdmin}, 0},
		{"empty caller never matches empty owner", OwnershipClaim{ResourceOwner: "", Caller: "", CallerRole: domain.RoleSeller}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertStatus(t, AuthorizeOwnership(tc.claim), tc.wantStatus)
		})
	}
}

func TestMatchPath(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/products", "/products", true},
		{"/products", "/products/1", false},
		{"/products/:id", "/products/1", true},
		{"/products/:id", "/products", false},
		{"/products/:id/stock", "/products/1/stock", true},
		{"/products/:id/stock", "/products/1", false},
		{"/health/*", "/health/live", true},
		{"/health/*", "/health/a/b", true},
		{"/health/*", "/health", false},
		{"/health/*", "/healthz", false},
		{"/products", "/PRODUCTS", true},
		{"/auth/register/admin", "/Auth/Register/Admin", true},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.want {
			t.Fatalf("matchPath(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}
