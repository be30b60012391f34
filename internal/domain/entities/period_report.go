package entities

import (
	"fmt"
	"time"
)

// DefaultProductLabel is used when an ingested row carries no product cell.
const DefaultProductLabel = "Unspecified"

// PeriodReport is one reported transaction unit: "this patient transacted
// with this vendor in this month". Multiple reports per patient per month
// are allowed and summed by the aggregation engine.
type PeriodReport struct {
	ID        string    `json:"id" db:"id"`
	PatientID string    `json:"patient_id" db:"patient_id"`
	VendorID  string    `json:"vendor_id" db:"vendor_id"`
	ClinicID  string    `json:"clinic_id" db:"clinic_id"`
	Month     time.Time `json:"month" db:"month"`
	Amount    float64   `json:"amount" db:"amount"`
	Quantity  *float64  `json:"quantity,omitempty" db:"quantity"`
	Product   string    `json:"product" db:"product"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NormalizeMonth truncates a date to the first day of its calendar month in
// UTC. Every stored PeriodReport month goes through this so that month
// grouping compares equal dates.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey renders a month as its "YYYY-MM" bucket key. Lexicographic order
// of keys matches chronological order.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthsBetween returns the number of whole calendar months from a to b,
// clamped to zero when a is after b.
func MonthsBetween(a, b time.Time) int {
	months := (b.Year()*12 + int(b.Month())) - (a.Year()*12 + int(a.Month()))
	if months < 0 {
		return 0
	}
	return months
}
