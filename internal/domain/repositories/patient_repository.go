package repositories

import (
	"context"

	"github.com/caredesk/patient-admin/internal/domain/entities"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	// Create creates a new patient
	Create(ctx context.Context, patient *entities.Patient) error

	// GetByID retrieves a patient by ID
	GetByID(ctx context.Context, id string) (*entities.Patient, error)

	// GetByIDs retrieves multiple patients by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Patient, error)

	// GetByNaturalKey retrieves a patient by its clinic-scoped patient number
	GetByNaturalKey(ctx context.Context, clinicID, patientNumber string) (*entities.Patient, error)

	// GetByName retrieves a patient by clinic and case-insensitive full name
	GetByName(ctx context.Context, clinicID, firstName, lastName string) (*entities.Patient, error)

	// Update updates a patient
	Update(ctx context.Context, patient *entities.Patient) error

	// Delete deletes a patient
	Delete(ctx context.Context, id string) error

	// List retrieves patients matching a filter
	List(ctx context.Context, filter PatientFilter) ([]*entities.Patient, error)
}

// PatientFilter defines filters for listing patients
type PatientFilter struct {
	ClinicID string
	Category entities.Category
	Status   entities.PatientStatus
	// NameQuery matches a case-insensitive substring of first or last name.
	NameQuery string
	OrderBy   string
	Limit     int
	Offset    int
}
