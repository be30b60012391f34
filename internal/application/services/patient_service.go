package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
)

// PatientService provides business logic for patient administration
type PatientService struct {
	patientRepo repositories.PatientRepository
	activity    *ActivityService
}

// NewPatientService creates a new patient service. activity may be nil.
func NewPatientService(patientRepo repositories.PatientRepository, activity *ActivityService) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		activity:    activity,
	}
}

// Create validates and creates a patient. The natural key must be unique
// within the clinic.
func (s *PatientService) Create(ctx context.Context, patient *entities.Patient) error {
	if patient.ClinicID == "" {
		return apperrors.NewValidationError("clinic is required")
	}
	if patient.FirstName == "" && patient.PatientNumber == "" {
		return apperrors.NewValidationError("patient name or patient number is required")
	}

	if patient.PatientNumber != "" {
		existing, err := s.patientRepo.GetByNaturalKey(ctx, patient.ClinicID, patient.PatientNumber)
		if err == nil && existing != nil {
			return apperrors.NewConflictError("patient number already exists in this clinic")
		}
		if err != nil && !apperrors.IsNotFound(err) {
			return err
		}
	}

	now := time.Now().UTC()
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	if patient.Category == "" {
		patient.Category = entities.CategoryCivilian
	}
	if patient.Status == "" {
		patient.Status = entities.PatientStatusActive
	}
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return err
	}

	s.invalidate(ctx, patient.ClinicID)
	return nil
}

// Get retrieves a patient by ID
func (s *PatientService) Get(ctx context.Context, id string) (*entities.Patient, error) {
	return s.patientRepo.GetByID(ctx, id)
}

// List retrieves patients matching a filter
func (s *PatientService) List(ctx context.Context, filter repositories.PatientFilter) ([]*entities.Patient, error) {
	return s.patientRepo.List(ctx, filter)
}

// Update updates a patient
func (s *PatientService) Update(ctx context.Context, patient *entities.Patient) error {
	if patient.ID == "" {
		return apperrors.NewValidationError("patient id is required")
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return err
	}

	s.invalidate(ctx, patient.ClinicID)
	return nil
}

// SetStatus toggles a patient between active and inactive
func (s *PatientService) SetStatus(ctx context.Context, id string, status entities.PatientStatus) (*entities.Patient, error) {
	if status != entities.PatientStatusActive && status != entities.PatientStatusInactive {
		return nil, apperrors.NewValidationError("status must be active or inactive")
	}

	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient.Status = status
	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}

	s.invalidate(ctx, patient.ClinicID)
	return patient, nil
}

// Delete removes a patient. The store cascades dependent rows.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.patientRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, patient.ClinicID)
	return nil
}

func (s *PatientService) invalidate(ctx context.Context, clinicID string) {
	if s.activity != nil && clinicID != "" {
		s.activity.InvalidateClinic(ctx, clinicID)
	}
}
