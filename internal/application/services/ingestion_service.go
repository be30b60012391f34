package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/providers"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
	"github.com/caredesk/patient-admin/pkg/sheet"
)

// maxReportedRowErrors bounds the error list carried back to the caller;
// anything beyond it is summarized as an overflow count.
const maxReportedRowErrors = 10

// IngestionKind selects how uploaded rows are matched to existing patients
type IngestionKind string

const (
	// IngestionKindVendorReport matches patients by clinic-scoped natural key
	IngestionKindVendorReport IngestionKind = "vendor_report"

	// IngestionKindPharmacyReport matches patients by case-insensitive name
	IngestionKindPharmacyReport IngestionKind = "pharmacy_report"
)

// IngestionParams describes one spreadsheet upload
type IngestionParams struct {
	ClinicID string
	VendorID string
	// Month is the reporting month selected for the upload; every emitted
	// report carries it. Row dates are not parsed.
	Month   time.Time
	Kind    IngestionKind
	Rows    [][]string
	ActorID string
}

// IngestionSummary reports the outcome of one upload
type IngestionSummary struct {
	RowsProcessed   int      `json:"rows_processed"`
	PatientsCreated int      `json:"patients_created"`
	PatientsMatched int      `json:"patients_matched"`
	ReportsEmitted  int      `json:"reports_emitted"`
	Failed          int      `json:"failed"`
	Errors          []string `json:"errors"`
	ErrorOverflow   int      `json:"error_overflow"`
}

func (s *IngestionSummary) addRowError(msg string) {
	s.Failed++
	if len(s.Errors) < maxReportedRowErrors {
		s.Errors = append(s.Errors, msg)
		return
	}
	s.ErrorOverflow++
}

// IngestionService turns parsed spreadsheet rows into patient upserts and a
// batch of period reports
type IngestionService struct {
	patientRepo repositories.PatientRepository
	reportRepo  repositories.PeriodReportRepository
	activity    *ActivityService
	metrics     *observability.Metrics
	eventBus    providers.EventBus
}

// NewIngestionService creates a new ingestion service. activity and metrics
// may be nil.
func NewIngestionService(
	patientRepo repositories.PatientRepository,
	reportRepo repositories.PeriodReportRepository,
	activity *ActivityService,
	metrics *observability.Metrics,
) *IngestionService {
	return &IngestionService{
		patientRepo: patientRepo,
		reportRepo:  reportRepo,
		activity:    activity,
		metrics:     metrics,
	}
}

// SetEventBus enables change notifications to other API instances
func (s *IngestionService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

type columnLayout struct {
	naturalKey int
	fullName   int
	firstName  int
	lastName   int
	amount     int
	quantity   int
	product    int
	category   int
}

func resolveColumns(header []string) columnLayout {
	return columnLayout{
		naturalKey: sheet.ColumnIndex(header, "patient id", "patient number", "k number", "k-number"),
		fullName:   sheet.ColumnIndex(header, "patient name", "full name", "patient initials", "patient initals"),
		firstName:  sheet.ColumnIndex(header, "first name"),
		lastName:   sheet.ColumnIndex(header, "last name", "surname"),
		amount:     sheet.ColumnIndex(header, "amount", "total", "spend", "revenue"),
		quantity:   sheet.ColumnIndex(header, "quantity", "grams", "qty"),
		product:    sheet.ColumnIndex(header, "product", "item", "description"),
		category:   sheet.ColumnIndex(header, "category", "type"),
	}
}

// Ingest validates the upload, upserts one patient per row and batch-inserts
// the emitted period reports. Row failures are collected, not fatal; a batch
// insert failure is surfaced as a single store error with the already
// upserted patients left in place.
func (s *IngestionService) Ingest(ctx context.Context, params IngestionParams) (*IngestionSummary, error) {
	summary := &IngestionSummary{Errors: []string{}}

	if params.ClinicID == "" {
		return summary, apperrors.NewValidationError("clinic is required")
	}
	if params.VendorID == "" {
		return summary, apperrors.NewValidationError("vendor is required")
	}
	if params.Month.IsZero() {
		return summary, apperrors.NewValidationError("reporting month is required")
	}
	if len(params.Rows) == 0 {
		return summary, apperrors.NewValidationError("spreadsheet is empty")
	}
	if params.Kind == "" {
		params.Kind = IngestionKindVendorReport
	}

	headerIdx, ok := sheet.FindHeaderRow(params.Rows)
	if !ok {
		return summary, apperrors.NewValidationError("no header row found in spreadsheet")
	}

	header := params.Rows[headerIdx]
	cols := resolveColumns(header)

	switch params.Kind {
	case IngestionKindVendorReport:
		if cols.naturalKey < 0 {
			return summary, apperrors.NewValidationError("no patient id column found in header")
		}
	case IngestionKindPharmacyReport:
		if cols.fullName < 0 && (cols.firstName < 0 || cols.lastName < 0) {
			return summary, apperrors.NewValidationError("no patient name column found in header")
		}
	default:
		return summary, apperrors.NewValidationError(fmt.Sprintf("unknown ingestion kind %q", params.Kind))
	}

	logger := observability.LoggerFromContext(ctx)
	month := entities.NormalizeMonth(params.Month)
	now := time.Now().UTC()

	// In-file duplicates resolve to the patient found for the first
	// occurrence, so one upload never creates the same patient twice.
	patientsByKey := make(map[string]*entities.Patient)
	pendingReports := make([]*entities.PeriodReport, 0, len(params.Rows))

	for i, row := range params.Rows[headerIdx+1:] {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("ingestion canceled after %d rows: %w", summary.RowsProcessed, err)
		}

		rowNum := headerIdx + i + 2 // 1-based, matching what users see in the sheet
		summary.RowsProcessed++

		key, first, last := rowIdentity(row, cols, params.Kind)
		if key == "" {
			continue
		}

		patient, cached := patientsByKey[key]
		if !cached {
			var created bool
			var err error
			patient, created, err = s.resolvePatient(ctx, params, cols, row, first, last, now)
			if err != nil {
				summary.addRowError(fmt.Sprintf("row %d: %v", rowNum, err))
				continue
			}
			if created {
				summary.PatientsCreated++
			} else {
				summary.PatientsMatched++
			}
			patientsByKey[key] = patient
		} else {
			summary.PatientsMatched++
		}

		amount, ok := sheet.DecodeMoney(sheet.Cell(row, cols.amount))
		if !ok {
			// Unparseable amounts coerce to zero instead of dropping the row.
			amount = 0
		}

		var quantity *float64
		if qty, ok := sheet.DecodeQuantity(sheet.Cell(row, cols.quantity)); ok {
			quantity = &qty
		}

		product := sheet.Cell(row, cols.product)
		if product == "" {
			product = entities.DefaultProductLabel
		}

		pendingReports = append(pendingReports, &entities.PeriodReport{
			ID:        uuid.NewString(),
			PatientID: patient.ID,
			VendorID:  params.VendorID,
			ClinicID:  params.ClinicID,
			Month:     month,
			Amount:    amount,
			Quantity:  quantity,
			Product:   product,
			CreatedAt: now,
		})
	}

	if err := s.reportRepo.BatchCreate(ctx, pendingReports); err != nil {
		// Patients upserted above stay; there is no compensating rollback.
		return summary, apperrors.NewInternalError("failed to insert period reports", err)
	}
	summary.ReportsEmitted = len(pendingReports)

	if s.activity != nil {
		s.activity.InvalidateClinic(ctx, params.ClinicID)
	}
	if s.metrics != nil {
		observability.RecordIngestionRows(ctx, s.metrics, string(params.Kind), summary.RowsProcessed)
	}
	if s.eventBus != nil {
		event := entities.NewAdminEvent(params.ClinicID, entities.AdminEventTypeReportsIngested, map[string]interface{}{
			"vendor_id":       params.VendorID,
			"month":           entities.MonthKey(month),
			"reports_emitted": summary.ReportsEmitted,
		})
		if err := s.eventBus.Publish(ctx, providers.EventChannelClinicUpdates, event); err != nil {
			logger.Warn().Err(err).Msg("failed to publish ingestion event")
		}
	}

	logger.Info().
		Str("clinic_id", params.ClinicID).
		Str("vendor_id", params.VendorID).
		Str("actor_id", params.ActorID).
		Str("kind", string(params.Kind)).
		Int("rows", summary.RowsProcessed).
		Int("patients_created", summary.PatientsCreated).
		Int("reports_emitted", summary.ReportsEmitted).
		Int("failed", summary.Failed).
		Msg("spreadsheet ingestion finished")

	return summary, nil
}

// rowIdentity derives the dedup key and name parts for a row. The key is
// empty when the row carries no usable identity and must be skipped.
func rowIdentity(row []string, cols columnLayout, kind IngestionKind) (key, first, last string) {
	if cols.firstName >= 0 || cols.lastName >= 0 {
		first = sheet.Cell(row, cols.firstName)
		last = sheet.Cell(row, cols.lastName)
	}
	if first == "" && last == "" {
		first, last = entities.SplitName(sheet.Cell(row, cols.fullName))
	}

	if kind == IngestionKindVendorReport {
		naturalKey := sheet.Cell(row, cols.naturalKey)
		if naturalKey == "" {
			return "", first, last
		}
		return "key:" + strings.ToLower(naturalKey), first, last
	}

	if first == "" && last == "" {
		return "", "", ""
	}
	return "name:" + strings.ToLower(first) + "|" + strings.ToLower(last), first, last
}

// resolvePatient finds an existing patient for the row or creates one with
// default category and active status. Creation is deliberately not retried.
func (s *IngestionService) resolvePatient(ctx context.Context, params IngestionParams, cols columnLayout, row []string, first, last string, now time.Time) (*entities.Patient, bool, error) {
	var patient *entities.Patient
	var err error

	naturalKey := sheet.Cell(row, cols.naturalKey)

	switch params.Kind {
	case IngestionKindVendorReport:
		patient, err = s.patientRepo.GetByNaturalKey(ctx, params.ClinicID, naturalKey)
	case IngestionKindPharmacyReport:
		patient, err = s.patientRepo.GetByName(ctx, params.ClinicID, first, last)
	}

	if err == nil {
		return patient, false, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, false, err
	}

	category := entities.CategoryCivilian
	if cols.category >= 0 {
		category = entities.ParseCategory(sheet.Cell(row, cols.category))
	}

	patient = &entities.Patient{
		ID:            uuid.NewString(),
		PatientNumber: naturalKey,
		FirstName:     first,
		LastName:      last,
		Category:      category,
		ClinicID:      params.ClinicID,
		Status:        entities.PatientStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, false, err
	}

	return patient, true, nil
}
