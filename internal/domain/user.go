package domain

import "time"

// User represents a registered account of the system.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	DateJoined   time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated caller extracted from a verified access token.
// Every task and profile operation receives it as an explicit argument.
type Identity struct {
	UserID   int64
	Username string
	// TokenID is the jti of the access token the caller presented.
	TokenID string
	// TokenExpiresAt is the expiry of that access token.
	TokenExpiresAt time.Time
}
