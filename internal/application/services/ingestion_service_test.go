package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
	"github.com/caredesk/patient-admin/tests/mocks"
)

func ingestionParams(rows [][]string) services.IngestionParams {
	return services.IngestionParams{
		ClinicID: "clinic-1",
		VendorID: "vendor-1",
		Month:    time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		Kind:     services.IngestionKindVendorReport,
		Rows:     rows,
		ActorID:  "admin-1",
	}
}

func TestIngest_CreatesPatientsAndEmitsReports(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Monthly Vendor Report"},
		{"Patient ID", "Patient Name", "Amount", "Quantity", "Product"},
		{"K1001", "Jane Doe", "150.25", "14", "Oil"},
		{"K1002", "Bob", "99.00", "", ""},
	}

	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("patient not found"))
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var inserted []*entities.PeriodReport
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]*entities.PeriodReport)
		}).
		Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowsProcessed)
	assert.Equal(t, 2, summary.PatientsCreated)
	assert.Equal(t, 2, summary.ReportsEmitted)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, inserted, 2)
	assert.Equal(t, 150.25, inserted[0].Amount)
	require.NotNil(t, inserted[0].Quantity)
	assert.Equal(t, 14.0, *inserted[0].Quantity)
	assert.Equal(t, "Oil", inserted[0].Product)
	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), inserted[0].Month)

	// Missing product cell falls back to the default label, missing
	// quantity stays unset.
	assert.Equal(t, entities.DefaultProductLabel, inserted[1].Product)
	assert.Nil(t, inserted[1].Quantity)

	// Combined name split: first token is the first name.
	created := patientRepo.Calls[1].Arguments.Get(1).(*entities.Patient)
	assert.Equal(t, "Jane", created.FirstName)
	assert.Equal(t, "Doe", created.LastName)
	assert.Equal(t, "K1001", created.PatientNumber)
}

func TestIngest_DuplicateNaturalKeyInFileReusesPatient(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "10"},
		{"K1001", "Jane Doe", "20"},
	}

	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").
		Return(nil, apperrors.NewNotFoundError("patient not found")).Once()
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 1, summary.PatientsCreated)
	assert.Equal(t, 1, summary.PatientsMatched)
	assert.Equal(t, 2, summary.ReportsEmitted)
	patientRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestIngest_ReingestResolvesExistingPatients(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "10"},
	}

	existing := &entities.Patient{
		ID:            "p-existing",
		PatientNumber: "K1001",
		ClinicID:      "clinic-1",
		Status:        entities.PatientStatusActive,
		CreatedAt:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").Return(existing, nil)
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 0, summary.PatientsCreated)
	assert.Equal(t, 1, summary.PatientsMatched)
	patientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_NameMatchedIngestion(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient Name", "Amount"},
		{"Jane Doe", "10"},
	}

	params := ingestionParams(rows)
	params.Kind = services.IngestionKindPharmacyReport

	patientRepo.On("GetByName", mock.Anything, "clinic-1", "Jane", "Doe").
		Return(nil, apperrors.NewNotFoundError("patient not found"))
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.PatientsCreated)
}

func TestIngest_MissingHeaderIsValidationError(t *testing.T) {
	svc := services.NewIngestionService(new(mocks.MockPatientRepository), new(mocks.MockPeriodReportRepository), nil, nil)

	rows := [][]string{
		{"no", "recognizable", "columns"},
		{"1", "2", "3"},
	}

	_, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestIngest_MissingParamsAreValidationErrors(t *testing.T) {
	svc := services.NewIngestionService(new(mocks.MockPatientRepository), new(mocks.MockPeriodReportRepository), nil, nil)

	params := ingestionParams([][]string{{"Patient ID"}})
	params.VendorID = ""
	_, err := svc.Ingest(context.Background(), params)
	assert.True(t, apperrors.IsValidation(err))

	params = ingestionParams([][]string{{"Patient ID"}})
	params.Month = time.Time{}
	_, err = svc.Ingest(context.Background(), params)
	assert.True(t, apperrors.IsValidation(err))

	params = ingestionParams(nil)
	_, err = svc.Ingest(context.Background(), params)
	assert.True(t, apperrors.IsValidation(err))
}

func TestIngest_EmptyDataAfterHeaderIsSuccess(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
	}

	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 0, summary.RowsProcessed)
	assert.Equal(t, 0, summary.ReportsEmitted)
}

func TestIngest_SkipsRowsWithEmptyNaturalKey(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"", "No Key", "10"},
		{"K1001", "Jane Doe", "10"},
	}

	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").
		Return(nil, apperrors.NewNotFoundError("patient not found"))
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowsProcessed)
	assert.Equal(t, 1, summary.ReportsEmitted)
	assert.Equal(t, 0, summary.Failed)
}

func TestIngest_UnparseableAmountCoercesToZero(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "n/a"},
	}

	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").
		Return(nil, apperrors.NewNotFoundError("patient not found"))
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var inserted []*entities.PeriodReport
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]*entities.PeriodReport)
		}).
		Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReportsEmitted)
	require.Len(t, inserted, 1)
	assert.Equal(t, 0.0, inserted[0].Amount)
}

func TestIngest_RowErrorsAreBounded(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{{"Patient ID", "Patient Name", "Amount"}}
	for i := 0; i < 15; i++ {
		rows = append(rows, []string{fmt.Sprintf("K%d", i), "Jane Doe", "10"})
	}

	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", mock.Anything).
		Return(nil, apperrors.NewInternalError("store unavailable", errors.New("timeout")))
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 15, summary.Failed)
	assert.Len(t, summary.Errors, 10)
	assert.Equal(t, 5, summary.ErrorOverflow)
	assert.Equal(t, 0, summary.ReportsEmitted)
}

func TestIngest_BatchInsertFailureKeepsPatients(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "10"},
	}

	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").
		Return(nil, apperrors.NewNotFoundError("patient not found"))
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).
		Return(apperrors.NewInternalError("insert failed", errors.New("connection reset")))

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	// The patient upsert happened before the batch failed and is not
	// rolled back.
	assert.Equal(t, 1, summary.PatientsCreated)
	assert.Equal(t, 0, summary.ReportsEmitted)
}

func TestIngest_CanceledContextStopsBetweenRows(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "10"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Ingest(ctx, ingestionParams(rows))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	patientRepo.AssertNotCalled(t, "GetByNaturalKey", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_MixedCaseNaturalKeysResolveToOnePatient(t *testing.T) {
	patientRepo := new(mocks.MockPatientRepository)
	reportRepo := new(mocks.MockPeriodReportRepository)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	rows := [][]string{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "10"},
		{"k1001", "Jane Doe", "20"},
	}

	// The store lookup is case-insensitive; the in-file cache must agree,
	// so only the first casing ever reaches the repository.
	patientRepo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").
		Return(nil, apperrors.NewNotFoundError("patient not found")).Once()
	patientRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	reportRepo.On("BatchCreate", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), ingestionParams(rows))

	require.NoError(t, err)
	assert.Equal(t, 1, summary.PatientsCreated)
	assert.Equal(t, 1, summary.PatientsMatched)
	assert.Equal(t, 2, summary.ReportsEmitted)
	patientRepo.AssertNumberOfCalls(t, "GetByNaturalKey", 1)
	patientRepo.AssertNumberOfCalls(t, "Create", 1)
}
