package events

import (
	"time"

	"github.com/spec-kit/marketplace-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventProductCreated EventType = "product_created"
	EventProductUpdated EventType = "product_updated"
	EventProductDeleted EventType = "product_deleted"
)

// Actor encapsulates the caller behind an event. Username is empty for
// anonymous actors (failed logins).
type Actor struct {
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents an audit event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// LoginFailedPayload payload. Only the attempted username is recorded; the
// failure cause stays out of the audit trail.
type LoginFailedPayload struct {
	Username string `json:"username"`
}

// ProductPayload payload for product lifecycle events.
type ProductPayload struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
}
