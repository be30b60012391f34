package entities

import "time"

// Clinic represents a clinic that owns patients and may own vendors
type Clinic struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Email       string    `json:"email" db:"email"`
	Street      string    `json:"street" db:"street"`
	City        string    `json:"city" db:"city"`
	State       string    `json:"state" db:"state"`
	ZipCode     string    `json:"zip_code" db:"zip_code"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
