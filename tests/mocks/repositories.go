// Package mocks provides testify mocks for the domain repository and
// provider interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
)

// MockPatientRepository mocks repositories.PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Patient, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByNaturalKey(ctx context.Context, clinicID, patientNumber string) (*entities.Patient, error) {
	args := m.Called(ctx, clinicID, patientNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByName(ctx context.Context, clinicID, firstName, lastName string) (*entities.Patient, error) {
	args := m.Called(ctx, clinicID, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, patient *entities.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context, filter repositories.PatientFilter) ([]*entities.Patient, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

// MockClinicRepository mocks repositories.ClinicRepository
type MockClinicRepository struct {
	mock.Mock
}

func (m *MockClinicRepository) Create(ctx context.Context, clinic *entities.Clinic) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func (m *MockClinicRepository) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Clinic), args.Error(1)
}

func (m *MockClinicRepository) Update(ctx context.Context, clinic *entities.Clinic) error {
	args := m.Called(ctx, clinic)
	return args.Error(0)
}

func (m *MockClinicRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClinicRepository) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Clinic), args.Error(1)
}

// MockVendorRepository mocks repositories.VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) Create(ctx context.Context, vendor *entities.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) GetByID(ctx context.Context, id string) (*entities.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Update(ctx context.Context, vendor *entities.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVendorRepository) List(ctx context.Context, filter repositories.VendorFilter) ([]*entities.Vendor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Vendor), args.Error(1)
}

func (m *MockVendorRepository) AssociatePatient(ctx context.Context, vendorID, patientID string) error {
	args := m.Called(ctx, vendorID, patientID)
	return args.Error(0)
}

func (m *MockVendorRepository) DissociatePatient(ctx context.Context, vendorID, patientID string) error {
	args := m.Called(ctx, vendorID, patientID)
	return args.Error(0)
}

func (m *MockVendorRepository) ListPatientIDs(ctx context.Context, vendorID string) ([]string, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPeriodReportRepository mocks repositories.PeriodReportRepository
type MockPeriodReportRepository struct {
	mock.Mock
}

func (m *MockPeriodReportRepository) Create(ctx context.Context, report *entities.PeriodReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockPeriodReportRepository) BatchCreate(ctx context.Context, reports []*entities.PeriodReport) error {
	args := m.Called(ctx, reports)
	return args.Error(0)
}

func (m *MockPeriodReportRepository) GetByID(ctx context.Context, id string) (*entities.PeriodReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PeriodReport), args.Error(1)
}

func (m *MockPeriodReportRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPeriodReportRepository) List(ctx context.Context, filter repositories.PeriodReportFilter) ([]*entities.PeriodReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PeriodReport), args.Error(1)
}

func (m *MockPeriodReportRepository) ListByVendorMonth(ctx context.Context, vendorID string, month time.Time) ([]*entities.PeriodReport, error) {
	args := m.Called(ctx, vendorID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PeriodReport), args.Error(1)
}

// MockCacheProvider mocks providers.CacheProvider
type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheProvider) DeleteByPrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
