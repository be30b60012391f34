package entities

import "time"

// Vendor represents a vendor/pharmacy that reports patient transactions.
// A vendor may be scoped to an owning clinic and carries a many-to-many
// association with the patients expected to transact with it.
type Vendor struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Email       string    `json:"email" db:"email"`
	ClinicID    *string   `json:"clinic_id,omitempty" db:"clinic_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
