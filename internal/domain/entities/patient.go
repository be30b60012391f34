package entities

import (
	"strings"
	"time"
)

// Category is the patient classification axis. Inactivity thresholds and
// monthly statistics are computed per category.
type Category string

const (
	CategoryVeteran  Category = "veteran"
	CategoryCivilian Category = "civilian"
)

// ParseCategory normalizes a free-form category label. Unknown labels fall
// back to civilian, which is the default for ingested rows.
func ParseCategory(s string) Category {
	if strings.EqualFold(strings.TrimSpace(s), string(CategoryVeteran)) {
		return CategoryVeteran
	}
	return CategoryCivilian
}

// PatientStatus is the lifecycle status of a patient record
type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

// Patient represents a patient record owned by a clinic
type Patient struct {
	ID                string        `json:"id" db:"id"`
	PatientNumber     string        `json:"patient_number" db:"patient_number"`
	FirstName         string        `json:"first_name" db:"first_name"`
	LastName          string        `json:"last_name" db:"last_name"`
	Category          Category      `json:"category" db:"category"`
	ClinicID          string        `json:"clinic_id" db:"clinic_id"`
	PreferredVendorID *string       `json:"preferred_vendor_id,omitempty" db:"preferred_vendor_id"`
	Status            PatientStatus `json:"status" db:"status"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name for a patient
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsActive reports whether the patient counts toward active rosters
func (p *Patient) IsActive() bool {
	return p.Status == PatientStatusActive
}

// SplitName derives first/last name from a combined name cell. The first
// token is the first name, the remainder the last name; single-token names
// get an empty last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
