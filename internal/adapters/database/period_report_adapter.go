package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/clients/postgres"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
)

var periodReportColumns = []interface{}{
	"id", "patient_id", "vendor_id", "clinic_id", "month", "amount",
	"quantity", "product", "created_at",
}

// PeriodReportAdapter implements the PeriodReportRepository interface
type PeriodReportAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPeriodReportAdapter creates a new period report adapter
func NewPeriodReportAdapter(client *postgres.Client) repositories.PeriodReportRepository {
	return &PeriodReportAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func periodReportRecord(report *entities.PeriodReport) goqu.Record {
	return goqu.Record{
		"id":         report.ID,
		"patient_id": report.PatientID,
		"vendor_id":  report.VendorID,
		"clinic_id":  report.ClinicID,
		"month":      entities.NormalizeMonth(report.Month),
		"amount":     report.Amount,
		"quantity": sql.NullFloat64{
			Float64: floatValue(report.Quantity),
			Valid:   report.Quantity != nil,
		},
		"product":    report.Product,
		"created_at": report.CreatedAt,
	}
}

// Create creates a single period report
func (a *PeriodReportAdapter) Create(ctx context.Context, report *entities.PeriodReport) error {
	query, args, err := a.db.Insert("period_reports").
		Rows(periodReportRecord(report)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	if _, err = a.client.DB().ExecContext(callCtx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create period report", err)
	}

	return nil
}

// BatchCreate inserts a set of period reports in one statement. Callers rely
// on all-or-nothing behavior for the batch itself; patient upserts performed
// before the batch are not rolled back when it fails.
func (a *PeriodReportAdapter) BatchCreate(ctx context.Context, reports []*entities.PeriodReport) error {
	if len(reports) == 0 {
		return nil
	}

	records := make([]interface{}, 0, len(reports))
	for _, report := range reports {
		records = append(records, periodReportRecord(report))
	}

	query, args, err := a.db.Insert("period_reports").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build batch insert query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	if _, err = a.client.DB().ExecContext(callCtx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to batch insert period reports", err)
	}

	return nil
}

// GetByID retrieves a period report by ID
func (a *PeriodReportAdapter) GetByID(ctx context.Context, id string) (*entities.PeriodReport, error) {
	query, args, err := a.db.Select(periodReportColumns...).
		From("period_reports").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	report := &entities.PeriodReport{}
	var quantity sql.NullFloat64
	var notFound bool

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		notFound = false
		scanErr := a.client.DB().QueryRowContext(callCtx, query, args...).Scan(
			&report.ID,
			&report.PatientID,
			&report.VendorID,
			&report.ClinicID,
			&report.Month,
			&report.Amount,
			&quantity,
			&report.Product,
			&report.CreatedAt,
		)
		if scanErr == sql.ErrNoRows {
			notFound = true
			return nil
		}
		return scanErr
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to get period report", err)
	}
	if notFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("period report with id %s not found", id))
	}

	if quantity.Valid {
		report.Quantity = &quantity.Float64
	}

	return report, nil
}

// Delete deletes a period report
func (a *PeriodReportAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("period_reports").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete period report", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("period report with id %s not found", id))
	}

	return nil
}

// List retrieves period reports matching a filter
func (a *PeriodReportAdapter) List(ctx context.Context, filter repositories.PeriodReportFilter) ([]*entities.PeriodReport, error) {
	ds := a.db.Select(periodReportColumns...).From("period_reports")

	if filter.ClinicID != "" {
		ds = ds.Where(goqu.Ex{"clinic_id": filter.ClinicID})
	}
	if filter.VendorID != "" {
		ds = ds.Where(goqu.Ex{"vendor_id": filter.VendorID})
	}
	if filter.PatientID != "" {
		ds = ds.Where(goqu.Ex{"patient_id": filter.PatientID})
	}
	if filter.MonthFrom != nil {
		ds = ds.Where(goqu.I("month").Gte(entities.NormalizeMonth(*filter.MonthFrom)))
	}
	if filter.MonthTo != nil {
		ds = ds.Where(goqu.I("month").Lte(entities.NormalizeMonth(*filter.MonthTo)))
	}

	ds = ds.Order(goqu.I("month").Desc(), goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryReports(ctx, query, args)
}

// ListByVendorMonth retrieves reports scoped to one vendor and month
func (a *PeriodReportAdapter) ListByVendorMonth(ctx context.Context, vendorID string, month time.Time) ([]*entities.PeriodReport, error) {
	query, args, err := a.db.Select(periodReportColumns...).
		From("period_reports").
		Where(goqu.Ex{
			"vendor_id": vendorID,
			"month":     entities.NormalizeMonth(month),
		}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryReports(ctx, query, args)
}

func (a *PeriodReportAdapter) queryReports(ctx context.Context, query string, args []interface{}) ([]*entities.PeriodReport, error) {
	var reports []*entities.PeriodReport

	err := withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		rows, queryErr := a.client.DB().QueryContext(callCtx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		reports = reports[:0]
		for rows.Next() {
			report := &entities.PeriodReport{}
			var quantity sql.NullFloat64

			if scanErr := rows.Scan(
				&report.ID,
				&report.PatientID,
				&report.VendorID,
				&report.ClinicID,
				&report.Month,
				&report.Amount,
				&quantity,
				&report.Product,
				&report.CreatedAt,
			); scanErr != nil {
				return scanErr
			}

			if quantity.Valid {
				report.Quantity = &quantity.Float64
			}
			reports = append(reports, report)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to list period reports", err)
	}
	if reports == nil {
		reports = []*entities.PeriodReport{}
	}

	return reports, nil
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
