package services

import (
	"context"
	"time"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
)

// ReconciliationResult summarizes which of a vendor's associated patients
// appear in that vendor's reports for a month. Percentages are left to the
// presentation layer.
type ReconciliationResult struct {
	VendorID         string              `json:"vendor_id"`
	Month            string              `json:"month"`
	TotalPatients    int                 `json:"total_patients"`
	ReportedPatients int                 `json:"reported_patients"`
	MissingPatients  []*entities.Patient `json:"missing_patients"`
	MissingCount     int                 `json:"missing_count"`
}

// ComputeReconciliation is the pure core: given the active patients
// associated with a vendor and the vendor+month scoped reports, it finds the
// patients with no report. Reports for patients outside the associated set
// are ignored so they cannot distort the counts.
func ComputeReconciliation(vendorID string, month time.Time, associated []*entities.Patient, reports []*entities.PeriodReport) *ReconciliationResult {
	result := &ReconciliationResult{
		VendorID:        vendorID,
		Month:           entities.MonthKey(month),
		MissingPatients: []*entities.Patient{},
	}

	if len(associated) == 0 {
		return result
	}

	associatedIDs := make(map[string]struct{}, len(associated))
	for _, patient := range associated {
		associatedIDs[patient.ID] = struct{}{}
	}

	monthKey := entities.MonthKey(month)
	reported := make(map[string]struct{})
	for _, report := range reports {
		if report.VendorID != vendorID {
			continue
		}
		if entities.MonthKey(report.Month) != monthKey {
			continue
		}
		if _, ok := associatedIDs[report.PatientID]; !ok {
			continue
		}
		reported[report.PatientID] = struct{}{}
	}

	result.TotalPatients = len(associated)
	result.ReportedPatients = len(reported)

	for _, patient := range associated {
		if _, ok := reported[patient.ID]; !ok {
			result.MissingPatients = append(result.MissingPatients, patient)
		}
	}
	result.MissingCount = len(result.MissingPatients)

	return result
}

// ReconciliationService resolves a vendor+month selection against the store
// and runs the reconciliation
type ReconciliationService struct {
	patientRepo repositories.PatientRepository
	vendorRepo  repositories.VendorRepository
	reportRepo  repositories.PeriodReportRepository
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	patientRepo repositories.PatientRepository,
	vendorRepo repositories.VendorRepository,
	reportRepo repositories.PeriodReportRepository,
) *ReconciliationService {
	return &ReconciliationService{
		patientRepo: patientRepo,
		vendorRepo:  vendorRepo,
		reportRepo:  reportRepo,
	}
}

// Reconcile computes the missing-patient summary for a vendor and month.
// A vendor with no associated patients yields an all-zero result, not an
// error.
func (s *ReconciliationService) Reconcile(ctx context.Context, vendorID string, month time.Time) (*ReconciliationResult, error) {
	patientIDs, err := s.vendorRepo.ListPatientIDs(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if len(patientIDs) == 0 {
		return ComputeReconciliation(vendorID, month, nil, nil), nil
	}

	patients, err := s.patientRepo.GetByIDs(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	active := make([]*entities.Patient, 0, len(patients))
	for _, patient := range patients {
		if patient.IsActive() {
			active = append(active, patient)
		}
	}

	reports, err := s.reportRepo.ListByVendorMonth(ctx, vendorID, entities.NormalizeMonth(month))
	if err != nil {
		return nil, err
	}

	return ComputeReconciliation(vendorID, entities.NormalizeMonth(month), active, reports), nil
}
