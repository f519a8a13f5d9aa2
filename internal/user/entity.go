// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                int64      `db:"id"`
	Email             string     `db:"email"`
	Name              string     `db:"name"`
	PasswordHash      *string    `db:"password_hash"`
	Provider          *string    `db:"provider"`
	ProviderID        *string    `db:"provider_id"`
	Role              Role       `db:"role"`
	AvatarURL         *string    `db:"avatar_url"`
	ResetTokenHash    *string    `db:"reset_token_hash"`
	ResetTokenExpires *time.Time `db:"reset_token_expires"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword reports whether the account can authenticate locally.
// Federated-only accounts carry no password hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
