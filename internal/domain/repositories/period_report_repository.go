package repositories

import (
	"context"
	"time"

	"github.com/caredesk/patient-admin/internal/domain/entities"
)

// PeriodReportRepository defines the interface for period report data
// operations. Months handed to this interface must already be normalized to
// the first of the month (entities.NormalizeMonth).
type PeriodReportRepository interface {
	// Create creates a single period report
	Create(ctx context.Context, report *entities.PeriodReport) error

	// BatchCreate inserts a set of period reports in one statement
	BatchCreate(ctx context.Context, reports []*entities.PeriodReport) error

	// GetByID retrieves a period report by ID
	GetByID(ctx context.Context, id string) (*entities.PeriodReport, error)

	// Delete deletes a period report
	Delete(ctx context.Context, id string) error

	// List retrieves period reports matching a filter
	List(ctx context.Context, filter PeriodReportFilter) ([]*entities.PeriodReport, error)

	// ListByVendorMonth retrieves reports scoped to one vendor and month
	ListByVendorMonth(ctx context.Context, vendorID string, month time.Time) ([]*entities.PeriodReport, error)
}

// PeriodReportFilter defines filters for listing period reports
type PeriodReportFilter struct {
	ClinicID  string
	VendorID  string
	PatientID string
	// MonthFrom/MonthTo bound the report month, inclusive.
	MonthFrom *time.Time
	MonthTo   *time.Time
	Limit     int
	Offset    int
}
