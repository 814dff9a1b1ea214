package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is an address book entry. Its email doubles as the sender
// allow-list for inbound mail filtering, so it is stored lower-cased.
type Vendor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Address   string    `db:"address" json:"address,omitempty"`
	Website   string    `db:"website" json:"website,omitempty"`
	Category  string    `db:"category" json:"category,omitempty"`
	Rating    float64   `db:"rating" json:"rating,omitempty"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
