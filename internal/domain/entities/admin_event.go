package entities

import (
	"time"

	"github.com/google/uuid"
)

// AdminEventType represents the type of administrative event
type AdminEventType string

const (
	AdminEventTypeReportsIngested      AdminEventType = "reports_ingested"
	AdminEventTypePatientStatusChanged AdminEventType = "patient_status_changed"
)

// AdminEvent represents a change notification emitted after an admin action
// that shifts what the analytics views show for a clinic
type AdminEvent struct {
	ID        string                 `json:"id"`
	ClinicID  string                 `json:"clinic_id"`
	EventType AdminEventType         `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields"`
}

// NewAdminEvent creates a new admin event
func NewAdminEvent(clinicID string, eventType AdminEventType, fields map[string]interface{}) *AdminEvent {
	return &AdminEvent{
		ID:        uuid.NewString(),
		ClinicID:  clinicID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
}
