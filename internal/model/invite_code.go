package model

import "time"

// InviteCode grants one account creation. Consuming it is a conditional
// update so a code can never be used twice or after expiry.
type InviteCode struct {
	Code      string     `db:"code" json:"code"`
	Used      bool       `db:"used" json:"used"`
	UsedBy    *string    `db:"used_by" json:"used_by,omitempty"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedBy string     `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
