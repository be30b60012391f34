package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
)

// ClinicService provides business logic for clinic administration
type ClinicService struct {
	clinicRepo repositories.ClinicRepository
}

// NewClinicService creates a new clinic service
func NewClinicService(clinicRepo repositories.ClinicRepository) *ClinicService {
	return &ClinicService{clinicRepo: clinicRepo}
}

// Create validates and creates a clinic
func (s *ClinicService) Create(ctx context.Context, clinic *entities.Clinic) error {
	if clinic.Name == "" {
		return apperrors.NewValidationError("clinic name is required")
	}

	now := time.Now().UTC()
	if clinic.ID == "" {
		clinic.ID = uuid.NewString()
	}
	clinic.IsActive = true
	clinic.CreatedAt = now
	clinic.UpdatedAt = now

	return s.clinicRepo.Create(ctx, clinic)
}

// Get retrieves a clinic by ID
func (s *ClinicService) Get(ctx context.Context, id string) (*entities.Clinic, error) {
	return s.clinicRepo.GetByID(ctx, id)
}

// List retrieves clinics matching a filter
func (s *ClinicService) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	return s.clinicRepo.List(ctx, filter)
}

// Update updates a clinic
func (s *ClinicService) Update(ctx context.Context, clinic *entities.Clinic) error {
	if clinic.ID == "" {
		return apperrors.NewValidationError("clinic id is required")
	}
	if clinic.Name == "" {
		return apperrors.NewValidationError("clinic name is required")
	}
	return s.clinicRepo.Update(ctx, clinic)
}

// Delete removes a clinic
func (s *ClinicService) Delete(ctx context.Context, id string) error {
	return s.clinicRepo.Delete(ctx, id)
}
