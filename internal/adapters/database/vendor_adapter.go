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

var vendorColumns = []interface{}{
	"id", "name", "phone_number", "email", "clinic_id", "is_active",
	"created_at", "updated_at",
}

// VendorAdapter implements the VendorRepository interface, including the
// patient_vendors association table
type VendorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVendorAdapter creates a new vendor adapter
func NewVendorAdapter(client *postgres.Client) repositories.VendorRepository {
	return &VendorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new vendor
func (a *VendorAdapter) Create(ctx context.Context, vendor *entities.Vendor) error {
	record := goqu.Record{
		"id":           vendor.ID,
		"name":         vendor.Name,
		"phone_number": vendor.PhoneNumber,
		"email":        vendor.Email,
		"clinic_id": sql.NullString{
			String: stringValue(vendor.ClinicID),
			Valid:  vendor.ClinicID != nil,
		},
		"is_active":  vendor.IsActive,
		"created_at": vendor.CreatedAt,
		"updated_at": vendor.UpdatedAt,
	}

	query, args, err := a.db.Insert("vendors").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	if _, err = a.client.DB().ExecContext(callCtx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create vendor", err)
	}

	return nil
}

// GetByID retrieves a vendor by ID
func (a *VendorAdapter) GetByID(ctx context.Context, id string) (*entities.Vendor, error) {
	query, args, err := a.db.Select(vendorColumns...).
		From("vendors").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	vendor := &entities.Vendor{}
	var clinicID sql.NullString
	var notFound bool

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		notFound = false
		scanErr := a.client.DB().QueryRowContext(callCtx, query, args...).Scan(
			&vendor.ID,
			&vendor.Name,
			&vendor.PhoneNumber,
			&vendor.Email,
			&clinicID,
			&vendor.IsActive,
			&vendor.CreatedAt,
			&vendor.UpdatedAt,
		)
		if scanErr == sql.ErrNoRows {
			notFound = true
			return nil
		}
		return scanErr
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to get vendor", err)
	}
	if notFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("vendor with id %s not found", id))
	}

	if clinicID.Valid {
		vendor.ClinicID = &clinicID.String
	}

	return vendor, nil
}

// Update updates a vendor
func (a *VendorAdapter) Update(ctx context.Context, vendor *entities.Vendor) error {
	vendor.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("vendors").
		Set(goqu.Record{
			"name":         vendor.Name,
			"phone_number": vendor.PhoneNumber,
			"email":        vendor.Email,
			"clinic_id": sql.NullString{
				String: stringValue(vendor.ClinicID),
				Valid:  vendor.ClinicID != nil,
			},
			"is_active":  vendor.IsActive,
			"updated_at": vendor.UpdatedAt,
		}).
		Where(goqu.Ex{"id": vendor.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update vendor", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("vendor with id %s not found", vendor.ID))
	}

	return nil
}

// Delete deletes a vendor
func (a *VendorAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("vendors").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete vendor", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("vendor with id %s not found", id))
	}

	return nil
}

// List retrieves vendors matching a filter
func (a *VendorAdapter) List(ctx context.Context, filter repositories.VendorFilter) ([]*entities.Vendor, error) {
	ds := a.db.Select(vendorColumns...).From("vendors")

	if filter.ClinicID != "" {
		ds = ds.Where(goqu.Ex{"clinic_id": filter.ClinicID})
	}
	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}
	if filter.NameQuery != "" {
		ds = ds.Where(goqu.I("name").ILike("%" + filter.NameQuery + "%"))
	}

	ds = ds.Order(goqu.I("name").Asc())

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

	var vendors []*entities.Vendor

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		rows, queryErr := a.client.DB().QueryContext(callCtx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		vendors = vendors[:0]
		for rows.Next() {
			vendor := &entities.Vendor{}
			var clinicID sql.NullString

			if scanErr := rows.Scan(
				&vendor.ID,
				&vendor.Name,
				&vendor.PhoneNumber,
				&vendor.Email,
				&clinicID,
				&vendor.IsActive,
				&vendor.CreatedAt,
				&vendor.UpdatedAt,
			); scanErr != nil {
				return scanErr
			}

			if clinicID.Valid {
				vendor.ClinicID = &clinicID.String
			}
			vendors = append(vendors, vendor)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to list vendors", err)
	}
	if vendors == nil {
		vendors = []*entities.Vendor{}
	}

	return vendors, nil
}

// AssociatePatient links a patient to a vendor. Re-linking an existing pair
// is a no-op via ON CONFLICT DO NOTHING.
func (a *VendorAdapter) AssociatePatient(ctx context.Context, vendorID, patientID string) error {
	query, args, err := a.db.Insert("patient_vendors").
		Rows(goqu.Record{
			"vendor_id":  vendorID,
			"patient_id": patientID,
			"created_at": time.Now().UTC(),
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	if _, err = a.client.DB().ExecContext(callCtx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to associate patient with vendor", err)
	}

	return nil
}

// DissociatePatient removes a patient/vendor link
func (a *VendorAdapter) DissociatePatient(ctx context.Context, vendorID, patientID string) error {
	query, args, err := a.db.Delete("patient_vendors").
		Where(goqu.Ex{"vendor_id": vendorID, "patient_id": patientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	if _, err = a.client.DB().ExecContext(callCtx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to dissociate patient from vendor", err)
	}

	return nil
}

// ListPatientIDs returns the ids of patients associated with a vendor
func (a *VendorAdapter) ListPatientIDs(ctx context.Context, vendorID string) ([]string, error) {
	query, args, err := a.db.Select("patient_id").
		From("patient_vendors").
		Where(goqu.Ex{"vendor_id": vendorID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var ids []string

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		rows, queryErr := a.client.DB().QueryContext(callCtx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		ids = ids[:0]
		for rows.Next() {
			var id string
			if scanErr := rows.Scan(&id); scanErr != nil {
				return scanErr
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to list vendor patient ids", err)
	}
	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}
