package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-api/internal/observability"
)

// Authenticator establishes the per-request SecurityContext from the bearer
// credential, if any. It never rejects a request itself: a missing or invalid
// token leaves the request anonymous with the failure reason recorded, and the
// policy engine decides whether anonymous is acceptable for the route. This
// keeps malformed or expired tokens from breaking public routes.
type Authenticator struct {
	tokens  *TokenManager
	metrics *observability.Metrics
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *TokenManager, metrics *observability.Metrics) *Authenticator {
	return &Authenticator{tokens: tokens, metrics: metrics}
}

// Handle resolves the caller's identity for the request.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		setSecurityContext(c, anonymousContext)
		return c.Next()
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		a.metrics.RecordAuthFailure(ErrTokenMalformed.Error())
		setSecurityContext(c, &SecurityContext{denied: ErrTokenMalformed})
		return c.Next()
	}

	identity, err := a.tokens.Verify(parts[1])
	if err != nil {
		a.metrics.RecordAuthFailure(err.Error())
		setSecurityContext(c, &SecurityContext{denied: err})
		return c.Next()
	}

	setSecurityContext(c, &SecurityContext{identity: identity})
	return c.Next()
}
