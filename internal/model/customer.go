package model

import "time"

// Customer is a contact record scoped to one profile. Phone is stored
// normalized (+<digits>) and is unique per owner.
type Customer struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Phone     string    `db:"phone" json:"phone"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email,omitempty"`
	Company   string    `db:"company" json:"company,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
