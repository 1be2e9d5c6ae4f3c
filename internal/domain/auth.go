package domain

import "time"

// Identity is the verified subject carried by a token. It is embedded in the
// signed payload at login and never looked up again once a token validates;
// handlers that need the full user record fetch it lazily by username.
type Identity struct {
	Username  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
