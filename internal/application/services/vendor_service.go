package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
)

// VendorService provides business logic for vendor administration and the
// patient/vendor association used by reconciliation
type VendorService struct {
	vendorRepo  repositories.VendorRepository
	patientRepo repositories.PatientRepository
}

// NewVendorService creates a new vendor service
func NewVendorService(vendorRepo repositories.VendorRepository, patientRepo repositories.PatientRepository) *VendorService {
	return &VendorService{
		vendorRepo:  vendorRepo,
		patientRepo: patientRepo,
	}
}

// Create validates and creates a vendor
func (s *VendorService) Create(ctx context.Context, vendor *entities.Vendor) error {
	if vendor.Name == "" {
		return apperrors.NewValidationError("vendor name is required")
	}

	now := time.Now().UTC()
	if vendor.ID == "" {
		vendor.ID = uuid.NewString()
	}
	vendor.IsActive = true
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	return s.vendorRepo.Create(ctx, vendor)
}

// Get retrieves a vendor by ID
func (s *VendorService) Get(ctx context.Context, id string) (*entities.Vendor, error) {
	return s.vendorRepo.GetByID(ctx, id)
}

// List retrieves vendors matching a filter
func (s *VendorService) List(ctx context.Context, filter repositories.VendorFilter) ([]*entities.Vendor, error) {
	return s.vendorRepo.List(ctx, filter)
}

// Update updates a vendor
func (s *VendorService) Update(ctx context.Context, vendor *entities.Vendor) error {
	if vendor.ID == "" {
		return apperrors.NewValidationError("vendor id is required")
	}
	if vendor.Name == "" {
		return apperrors.NewValidationError("vendor name is required")
	}
	return s.vendorRepo.Update(ctx, vendor)
}

// Delete removes a vendor
func (s *VendorService) Delete(ctx context.Context, id string) error {
	return s.vendorRepo.Delete(ctx, id)
}

// AssociatePatient links a patient to a vendor after checking both exist
func (s *VendorService) AssociatePatient(ctx context.Context, vendorID, patientID string) error {
	if _, err := s.vendorRepo.GetByID(ctx, vendorID); err != nil {
		return err
	}
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return err
	}
	return s.vendorRepo.AssociatePatient(ctx, vendorID, patientID)
}

// DissociatePatient removes a patient/vendor link
func (s *VendorService) DissociatePatient(ctx context.Context, vendorID, patientID string) error {
	return s.vendorRepo.DissociatePatient(ctx, vendorID, patientID)
}

// AssociatedPatients returns the full patient records linked to a vendor
func (s *VendorService) AssociatedPatients(ctx context.Context, vendorID string) ([]*entities.Patient, error) {
	ids, err := s.vendorRepo.ListPatientIDs(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entities.Patient{}, nil
	}
	return s.patientRepo.GetByIDs(ctx, ids)
}
