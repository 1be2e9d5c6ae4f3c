package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-api/internal/domain"
)

const securityContextKey = "security_context"

// SecurityContext holds the resolved identity for one request. It is created
// by the authentication middleware, lives in the request's locals and is never
// shared across requests.
type SecurityContext struct {
	identity *domain.Identity
	denied   error
}

var anonymousContext = &SecurityContext{}

// Authenticated reports whether a verified identity is attached.
func (s *SecurityContext) Authenticated() bool {
	return s != nil && s.identity != nil
}

// Identity returns the attached identity, or nil for anonymous callers.
func (s *SecurityContext) Identity() *domain.Identity {
	if s == nil {
		return nil
	}
	return s.identity
}

// Username returns the caller's username, empty for anonymous.
func (s *SecurityContext) Username() string {
	if s == nil || s.identity == nil {
		return ""
	}
	return s.identity.Username
}

// Role returns the caller's role, empty for anonymous.
func (s *SecurityContext) Role() domain.Role {
	if s == nil || s.identity == nil {
		return ""
	}
	return s.identity.Role
}

// DenialReason reports why a presented credential was rejected, if one was
// presented at all. Surfaced only when a protected route turns the anonymous
// context into a 401.
func (s *SecurityContext) DenialReason() error {
	if s == nil {
		return nil
	}
	return s.denied
}

// SecurityContextFrom retrieves the request's context, defaulting to anonymous.
func SecurityContextFrom(c *fiber.Ctx) *SecurityContext {
	val := c.Locals(securityContextKey)
	if val == nil {
		return anonymousContext
	}
	sc, ok := val.(*SecurityContext)
	if !ok {
		return anonymousContext
	}
	return sc
}

func setSecurityContext(c *fiber.Ctx, sc *SecurityContext) {
	c.Locals(securityContextKey, sc)
}
