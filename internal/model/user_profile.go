package model

import "time"

// Role controls what a profile may do. Only approved admins pass the admin gate.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ValidRole reports whether r is one of the assignable roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// UserProfile is an account record. Profiles are never hard-deleted;
// rejection is a status change.
type UserProfile struct {
	UserID       string        `db:"user_id" json:"user_id"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Role         Role          `db:"role" json:"role"`
	Status       AccountStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	ApprovedAt   *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// IsApprovedAdmin is the only check that grants access to admin routes.
func (p *UserProfile) IsApprovedAdmin() bool {
	return p != nil && p.Role == RoleAdmin && p.Status == StatusApproved
}
