package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-api/internal/domain"
	apperrors "github.com/spec-kit/marketplace-api/pkg/util"
)

// Access classifies who may pass an AccessRule.
type Access int

const (
	// AccessPublic allows any caller, anonymous included.
	AccessPublic Access = iota
	// AccessAuthenticated allows any non-anonymous caller.
	AccessAuthenticated
	// AccessRoles allows callers whose role is in the rule's set.
	AccessRoles
)

// AccessRule maps a method and path pattern to the roles allowed through.
// Path patterns use ":name" for single-segment wildcards and a trailing "*"
// for the remainder; the method "*" matches every verb.
type AccessRule struct {
	Method string
	Path   string
	Access Access
	Roles  []domain.Role
}

// Public builds a rule open to anonymous callers.
func Public(method, path string) AccessRule {
	return AccessRule{Method: method, Path: path, Access: AccessPublic}
}

// Authenticated builds a rule requiring any verified identity.
func Authenticated(method, path string) AccessRule {
	return AccessRule{Method: method, Path: path, Access: AccessAuthenticated}
}

// RequireRoles builds a rule restricted to an explicit role set. Membership is
// case-sensitive and exact; there are no wildcard roles.
func RequireRoles(method, path string, roles ...domain.Role) AccessRule {
	return AccessRule{Method: method, Path: path, Access: AccessRoles, Roles: roles}
}

// PolicyEngine evaluates the ordered rule table built at startup. The table is
// read-only afterwards and safe for concurrent use. Rules are matched first to
// last, so more specific patterns must precede broader ones; a request that
// matches nothing requires authentication (nothing is implicitly public).
type PolicyEngine struct {
	rules []AccessRule
}

// NewPolicyEngine builds the engine from an ordered rule table.
func NewPolicyEngine(rules []AccessRule) *PolicyEngine {
	return &PolicyEngine{rules: rules}
}

// Enforce returns the route-level authorization middleware. It runs after the
// authenticator and before dispatch.
func (p *PolicyEngine) Enforce() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := p.Decide(c.Method(), c.Path(), SecurityContextFrom(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// Decide applies the first matching rule to the caller. Anonymous callers on
// restricted routes get an unauthenticated error, never a forbidden one, so an
// unauthenticated probe learns nothing about what exists behind the route.
func (p *PolicyEngine) Decide(method, path string, sc *SecurityContext) error {
	rule, ok := p.match(method, path)
	if !ok {
		rule = AccessRule{Access: AccessAuthenticated}
	}

	switch rule.Access {
	case AccessPublic:
		return nil
	case AccessAuthenticated:
		if !sc.Authenticated() {
			return unauthenticatedError(sc)
		}
		return nil
	default:
		if !sc.Authenticated() {
			return unauthenticatedError(sc)
		}
		for _, role := range rule.Roles {
			if sc.Role() == role {
				return nil
			}
		}
		return apperrors.NewForbidden("not permitted")
	}
}

func (p *PolicyEngine) match(method, path string) (AccessRule, bool) {
	for _, rule := range p.rules {
		if matchMethod(rule.Method, method) && matchPath(rule.Path, path) {
			return rule, true
		}
	}
	return AccessRule{}, false
}

func matchMethod(pattern, method string) bool {
	return pattern == "*" || pattern == method
}

// matchPath compares segments case-insensitively because Fiber routes
// case-insensitively by default; a rule must cover every spelling of the path
// the router would dispatch. A trailing "*" requires at least one segment.
func matchPath(pattern, path string) bool {
	patternSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")

	for i, seg := range patternSegs {
		if i >= len(pathSegs) {
			return false
		}
		if seg == "*" && i == len(patternSegs)-1 {
			return true
		}
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if !strings.EqualFold(seg, pathSegs[i]) {
			return false
		}
	}
	return len(patternSegs) == len(pathSegs)
}

func unauthenticatedError(sc *SecurityContext) error {
	if errors.Is(sc.DenialReason(), ErrTokenExpired) {
		return apperrors.NewUnauthorized("session expired")
	}
	return apperrors.NewUnauthorized("invalid credentials")
}

// OwnershipClaim is the input for a resource-level authorization check.
type OwnershipClaim struct {
	ResourceOwner string
	Caller        string
	CallerRole    domain.Role
}

// AuthorizeOwnership allows the resource owner and ADMINs, everyone else is
// forbidden. Called from business logic once the resource is loaded; route
// patterns alone cannot know who owns a record.
func AuthorizeOwnership(claim OwnershipClaim) error {
	if claim.CallerRole == domain.RoleAdmin {
		return nil
	}
	if claim.Caller != "" && claim.Caller == claim.ResourceOwner {
		return nil
	}
	return apperrors.NewForbidden("not permitted")
}
