package repositories

import (
	"context"

	"github.com/caredesk/patient-admin/internal/domain/entities"
)

// ClinicRepository defines the interface for clinic data operations
type ClinicRepository interface {
	// Create creates a new clinic
	Create(ctx context.Context, clinic *entities.Clinic) error

	// GetByID retrieves a clinic by ID
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)

	// Update updates a clinic
	Update(ctx context.Context, clinic *entities.Clinic) error

	// Delete deletes a clinic
	Delete(ctx context.Context, id string) error

	// List retrieves clinics matching a filter
	List(ctx context.Context, filter ClinicFilter) ([]*entities.Clinic, error)
}

// ClinicFilter defines filters for listing clinics
type ClinicFilter struct {
	IsActive  *bool
	NameQuery string
	Limit     int
	Offset    int
}
