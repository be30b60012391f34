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

var clinicColumns = []interface{}{
	"id", "name", "phone_number", "email", "street", "city", "state",
	"zip_code", "is_active", "created_at", "updated_at",
}

// ClinicAdapter implements the ClinicRepository interface
type ClinicAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClinicAdapter creates a new clinic adapter
func NewClinicAdapter(client *postgres.Client) repositories.ClinicRepository {
	return &ClinicAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new clinic
func (a *ClinicAdapter) Create(ctx context.Context, clinic *entities.Clinic) error {
	record := goqu.Record{
		"id":           clinic.ID,
		"name":         clinic.Name,
		"phone_number": clinic.PhoneNumber,
		"email":        clinic.Email,
		"street":       clinic.Street,
		"city":         clinic.City,
		"state":        clinic.State,
		"zip_code":     clinic.ZipCode,
		"is_active":    clinic.IsActive,
		"created_at":   clinic.CreatedAt,
		"updated_at":   clinic.UpdatedAt,
	}

	query, args, err := a.db.Insert("clinics").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	if _, err = a.client.DB().ExecContext(callCtx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create clinic", err)
	}

	return nil
}

// GetByID retrieves a clinic by ID
func (a *ClinicAdapter) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	query, args, err := a.db.Select(clinicColumns...).
		From("clinics").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	clinic := &entities.Clinic{}
	var notFound bool

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		notFound = false
		scanErr := a.client.DB().QueryRowContext(callCtx, query, args...).Scan(
			&clinic.ID,
			&clinic.Name,
			&clinic.PhoneNumber,
			&clinic.Email,
			&clinic.Street,
			&clinic.City,
			&clinic.State,
			&clinic.ZipCode,
			&clinic.IsActive,
			&clinic.CreatedAt,
			&clinic.UpdatedAt,
		)
		if scanErr == sql.ErrNoRows {
			notFound = true
			return nil
		}
		return scanErr
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinic", err)
	}
	if notFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
	}

	return clinic, nil
}

// Update updates a clinic
func (a *ClinicAdapter) Update(ctx context.Context, clinic *entities.Clinic) error {
	clinic.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("clinics").
		Set(goqu.Record{
			"name":         clinic.Name,
			"phone_number": clinic.PhoneNumber,
			"email":        clinic.Email,
			"street":       clinic.Street,
			"city":         clinic.City,
			"state":        clinic.State,
			"zip_code":     clinic.ZipCode,
			"is_active":    clinic.IsActive,
			"updated_at":   clinic.UpdatedAt,
		}).
		Where(goqu.Ex{"id": clinic.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update clinic", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", clinic.ID))
	}

	return nil
}

// Delete deletes a clinic
func (a *ClinicAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("clinics").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete clinic", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
	}

	return nil
}

// List retrieves clinics matching a filter
func (a *ClinicAdapter) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	ds := a.db.Select(clinicColumns...).From("clinics")

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

	var clinics []*entities.Clinic

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		rows, queryErr := a.client.DB().QueryContext(callCtx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		clinics = clinics[:0]
		for rows.Next() {
			clinic := &entities.Clinic{}
			if scanErr := rows.Scan(
				&clinic.ID,
				&clinic.Name,
				&clinic.PhoneNumber,
				&clinic.Email,
				&clinic.Street,
				&clinic.City,
				&clinic.State,
				&clinic.ZipCode,
				&clinic.IsActive,
				&clinic.CreatedAt,
				&clinic.UpdatedAt,
			); scanErr != nil {
				return scanErr
			}
			clinics = append(clinics, clinic)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to list clinics", err)
	}
	if clinics == nil {
		clinics = []*entities.Clinic{}
	}

	return clinics, nil
}
