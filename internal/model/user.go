package model

import "time"

// UserType is the role carried by every account and by its access tokens.
type UserType string

const (
	UserTypePolice  UserType = "police"
	UserTypeCitizen UserType = "citizen"
)

// IsValidUserType reports whether s names a known role.
func IsValidUserType(s string) bool {
	switch UserType(s) {
	case UserTypePolice, UserTypeCitizen:
		return true
	}
	return false
}

// User represents a row of the `users` table.  Credits is the running
// balance; it only changes through the ledger together with a matching
// Transaction row.  The password hash never leaves the server.
type User struct {
	ID           string    `db:"id" json:"id"`                          // users.id (uuid)
	Username     string    `db:"username" json:"username"`              // users.username (unique)
	PasswordHash string    `db:"password_hash" json:"-"`                // users.password_hash (bcrypt)
	Name         string    `db:"name" json:"name"`                      // users.name
	Email        string    `db:"email" json:"email"`                    // users.email (unique)
	UserType     UserType  `db:"user_type" json:"userType"`             // users.user_type
	BadgeNumber  *string   `db:"badge_number" json:"badgeNumber"`       // users.badge_number (police only, nullable)
	Credits      int       `db:"credits" json:"credits"`                // users.credits
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`           // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hex digest of the opaque token is stored.
type RefreshToken struct {
	ID        string     `db:"id"`         // refresh_tokens.id
	UserID    string     `db:"user_id"`    // refresh_tokens.user_id
	TokenHash string     `db:"token_hash"` // refresh_tokens.token_hash
	ExpiresAt time.Time  `db:"expires_at"` // refresh_tokens.expires_at
	RevokedAt *time.Time `db:"revoked_at"` // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  `db:"created_at"` // refresh_tokens.created_at
}
