package repositories

import (
	"context"

	"github.com/caredesk/patient-admin/internal/domain/entities"
)

// VendorRepository defines the interface for vendor data operations,
// including the patient_vendors association used for reconciliation scoping.
type VendorRepository interface {
	// Create creates a new vendor
	Create(ctx context.Context, vendor *entities.Vendor) error

	// GetByID retrieves a vendor by ID
	GetByID(ctx context.Context, id string) (*entities.Vendor, error)

	// Update updates a vendor
	Update(ctx context.Context, vendor *entities.Vendor) error

	// Delete deletes a vendor
	Delete(ctx context.Context, id string) error

	// List retrieves vendors matching a filter
	List(ctx context.Context, filter VendorFilter) ([]*entities.Vendor, error)

	// AssociatePatient links a patient to a vendor; linking an already
	// associated patient is a no-op
	AssociatePatient(ctx context.Context, vendorID, patientID string) error

	// DissociatePatient removes a patient/vendor link
	DissociatePatient(ctx context.Context, vendorID, patientID string) error

	// ListPatientIDs returns the ids of patients associated with a vendor
	ListPatientIDs(ctx context.Context, vendorID string) ([]string, error)
}

// VendorFilter defines filters for listing vendors
type VendorFilter struct {
	ClinicID  string
	IsActive  *bool
	NameQuery string
	Limit     int
	Offset    int
}
