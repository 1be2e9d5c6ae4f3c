package domain

import (
	"fmt"
	"time"
)

// Role classifies what a user may do. The set is flat: ADMIN is listed
// explicitly in every restricted rule rather than inferred by rank.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole validates a role string (case-sensitive).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanSell reports whether the role may own products.
func (r Role) CanSell() bool {
	return r == RoleSeller || r == RoleAdmin
}

// User is the domain model for registered accounts.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
