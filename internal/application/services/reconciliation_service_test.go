package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/tests/mocks"
)

func vendorReport(patientID, vendorID string, when time.Time) *entities.PeriodReport {
	return &entities.PeriodReport{
		ID:        "r-" + patientID,
		PatientID: patientID,
		VendorID:  vendorID,
		Month:     when,
		Amount:    10,
	}
}

func TestComputeReconciliation_MissingPatients(t *testing.T) {
	m := month(2024, time.October)
	associated := []*entities.Patient{
		activePatient("A", entities.CategoryVeteran),
		activePatient("B", entities.CategoryVeteran),
		activePatient("C", entities.CategoryCivilian),
	}
	reports := []*entities.PeriodReport{
		vendorReport("A", "v1", m),
	}

	result := ComputeReconciliation("v1", m, associated, reports)

	assert.Equal(t, 3, result.TotalPatients)
	assert.Equal(t, 1, result.ReportedPatients)
	assert.Equal(t, 2, result.MissingCount)

	missingIDs := []string{result.MissingPatients[0].ID, result.MissingPatients[1].ID}
	assert.ElementsMatch(t, []string{"B", "C"}, missingIDs)
}

func TestComputeReconciliation_NoAssociatedPatients(t *testing.T) {
	result := ComputeReconciliation("v1", month(2024, time.October), nil, nil)

	assert.Equal(t, 0, result.TotalPatients)
	assert.Equal(t, 0, result.ReportedPatients)
	assert.Equal(t, 0, result.MissingCount)
	assert.Empty(t, result.MissingPatients)
}

func TestComputeReconciliation_IgnoresForeignReports(t *testing.T) {
	m := month(2024, time.October)
	associated := []*entities.Patient{
		activePatient("A", entities.CategoryVeteran),
	}
	reports := []*entities.PeriodReport{
		// Patient outside the associated set must not count as reported.
		vendorReport("X", "v1", m),
		// Wrong vendor must not count.
		vendorReport("A", "v2", m),
		// Wrong month must not count.
		vendorReport("A", "v1", month(2024, time.September)),
	}

	result := ComputeReconciliation("v1", m, associated, reports)

	assert.Equal(t, 1, result.TotalPatients)
	assert.Equal(t, 0, result.ReportedPatients)
	assert.Equal(t, 1, result.MissingCount)
}

func TestComputeReconciliation_CountsNeverExceedTotal(t *testing.T) {
	m := month(2024, time.October)
	associated := []*entities.Patient{
		activePatient("A", entities.CategoryVeteran),
		activePatient("B", entities.CategoryVeteran),
	}
	reports := []*entities.PeriodReport{
		vendorReport("A", "v1", m),
		vendorReport("A", "v1", m), // duplicate report, still one distinct orderer
		vendorReport("B", "v1", m),
	}

	result := ComputeReconciliation("v1", m, associated, reports)

	require.Equal(t, 2, result.TotalPatients)
	assert.Equal(t, 2, result.ReportedPatients)
	assert.Equal(t, 0, result.MissingCount)
	assert.LessOrEqual(t, result.MissingCount+result.ReportedPatients, result.TotalPatients)
}

func TestReconcile_ExcludesInactiveAssociatedPatients(t *testing.T) {
	m := month(2024, time.October)

	patientRepo := new(mocks.MockPatientRepository)
	vendorRepo := new(mocks.MockVendorRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)

	active := activePatient("A", entities.CategoryVeteran)
	inactive := &entities.Patient{
		ID:       "B",
		Category: entities.CategoryCivilian,
		Status:   entities.PatientStatusInactive,
	}

	vendorRepo.On("ListPatientIDs", mock.Anything, "v1").Return([]string{"A", "B"}, nil)
	patientRepo.On("GetByIDs", mock.Anything, []string{"A", "B"}).
		Return([]*entities.Patient{active, inactive}, nil)
	reportRepo.On("ListByVendorMonth", mock.Anything, "v1", m).
		Return([]*entities.PeriodReport{}, nil)

	svc := NewReconciliationService(patientRepo, vendorRepo, reportRepo)
	result, err := svc.Reconcile(context.Background(), "v1", m)

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPatients)
	assert.Equal(t, 1, result.MissingCount)
	require.Len(t, result.MissingPatients, 1)
	assert.Equal(t, "A", result.MissingPatients[0].ID)
}

func TestReconcile_ReportedPatientIsNotMissing(t *testing.T) {
	m := month(2024, time.October)

	patientRepo := new(mocks.MockPatientRepository)
	vendorRepo := new(mocks.MockVendorRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)

	vendorRepo.On("ListPatientIDs", mock.Anything, "v1").Return([]string{"A", "B"}, nil)
	patientRepo.On("GetByIDs", mock.Anything, []string{"A", "B"}).Return([]*entities.Patient{
		activePatient("A", entities.CategoryVeteran),
		activePatient("B", entities.CategoryCivilian),
	}, nil)
	reportRepo.On("ListByVendorMonth", mock.Anything, "v1", m).
		Return([]*entities.PeriodReport{vendorReport("A", "v1", m)}, nil)

	svc := NewReconciliationService(patientRepo, vendorRepo, reportRepo)
	result, err := svc.Reconcile(context.Background(), "v1", m)

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalPatients)
	assert.Equal(t, 1, result.ReportedPatients)
	require.Len(t, result.MissingPatients, 1)
	assert.Equal(t, "B", result.MissingPatients[0].ID)
}

func TestReconcile_NoAssociationsShortCircuits(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	vendorRepo := new(mocks.MockVendorRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)

	vendorRepo.On("ListPatientIDs", mock.Anything, "v1").Return([]string{}, nil)

	svc := NewReconciliationService(patientRepo, vendorRepo, reportRepo)
	result, err := svc.Reconcile(context.Background(), "v1", month(2024, time.October))

	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalPatients)
	assert.Equal(t, 0, result.ReportedPatients)
	assert.Equal(t, 0, result.MissingCount)
	assert.Empty(t, result.MissingPatients)
	patientRepo.AssertNotCalled(t, "GetByIDs")
	reportRepo.AssertNotCalled(t, "ListByVendorMonth")
}

func TestReconcile_NormalizesMonthForTheReportLookup(t *testing.T) {
	midMonth := time.Date(2024, 10, 17, 9, 30, 0, 0, time.UTC)
	normalized := month(2024, time.October)

	patientRepo := new(mocks.MockPatientRepository)
	vendorRepo := new(mocks.MockVendorRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)

	vendorRepo.On("ListPatientIDs", mock.Anything, "v1").Return([]string{"A"}, nil)
	patientRepo.On("GetByIDs", mock.Anything, []string{"A"}).
		Return([]*entities.Patient{activePatient("A", entities.CategoryVeteran)}, nil)
	reportRepo.On("ListByVendorMonth", mock.Anything, "v1", normalized).
		Return([]*entities.PeriodReport{}, nil)

	svc := NewReconciliationService(patientRepo, vendorRepo, reportRepo)
	result, err := svc.Reconcile(context.Background(), "v1", midMonth)

	require.NoError(t, err)
	assert.Equal(t, "2024-10", result.Month)
	reportRepo.AssertExpectations(t)
}
