package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/clients/postgres"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
)

var patientColumns = []interface{}{
	"id", "clinic_id", "patient_number", "first_name", "last_name",
	"category", "preferred_vendor_id", "status", "created_at", "updated_at",
}

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new patient
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	record := goqu.Record{
		"id":             patient.ID,
		"clinic_id":      patient.ClinicID,
		"patient_number": patient.PatientNumber,
		"first_name":     patient.FirstName,
		"last_name":      patient.LastName,
		"category":       string(patient.Category),
		"preferred_vendor_id": sql.NullString{
			String: stringValue(patient.PreferredVendorID),
			Valid:  patient.PreferredVendorID != nil,
		},
		"status":     string(patient.Status),
		"created_at": patient.CreatedAt,
		"updated_at": patient.UpdatedAt,
	}

	query, args, err := a.db.Insert("patients").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	_, err = a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create patient", err)
	}

	return nil
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByNaturalKey retrieves a patient by its clinic-scoped patient number.
// The match is case-insensitive so that re-ingested files with a different
// casing resolve to the same patient the dedup cache would.
func (a *PatientAdapter) GetByNaturalKey(ctx context.Context, clinicID, patientNumber string) (*entities.Patient, error) {
	return a.getOne(ctx, goqu.And(
		goqu.Ex{"clinic_id": clinicID},
		goqu.L("LOWER(patient_number)").Eq(strings.ToLower(patientNumber)),
	))
}

// GetByName retrieves a patient by clinic and case-insensitive full name
func (a *PatientAdapter) GetByName(ctx context.Context, clinicID, firstName, lastName string) (*entities.Patient, error) {
	return a.getOne(ctx, goqu.And(
		goqu.Ex{"clinic_id": clinicID},
		goqu.L("LOWER(first_name)").Eq(strings.ToLower(firstName)),
		goqu.L("LOWER(last_name)").Eq(strings.ToLower(lastName)),
	))
}

// GetByIDs retrieves multiple patients by their IDs
func (a *PatientAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Patient, error) {
	if len(ids) == 0 {
		return []*entities.Patient{}, nil
	}

	query, args, err := a.db.Select(patientColumns...).
		From("patients").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryPatients(ctx, query, args)
}

// Update updates a patient
func (a *PatientAdapter) Update(ctx context.Context, patient *entities.Patient) error {
	patient.UpdatedAt = time.Now().UTC()

	record := goqu.Record{
		"patient_number": patient.PatientNumber,
		"first_name":     patient.FirstName,
		"last_name":      patient.LastName,
		"category":       string(patient.Category),
		"preferred_vendor_id": sql.NullString{
			String: stringValue(patient.PreferredVendorID),
			Valid:  patient.PreferredVendorID != nil,
		},
		"status":     string(patient.Status),
		"updated_at": patient.UpdatedAt,
	}

	query, args, err := a.db.Update("patients").
		Set(record).
		Where(goqu.Ex{"id": patient.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", patient.ID))
	}

	return nil
}

// Delete deletes a patient
func (a *PatientAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("patients").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	callCtx, cancel := a.client.CallContext(ctx)
	defer cancel()

	result, err := a.client.DB().ExecContext(callCtx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}

	return nil
}

// List retrieves patients matching a filter
func (a *PatientAdapter) List(ctx context.Context, filter repositories.PatientFilter) ([]*entities.Patient, error) {
	ds := a.db.Select(patientColumns...).From("patients")

	if filter.ClinicID != "" {
		ds = ds.Where(goqu.Ex{"clinic_id": filter.ClinicID})
	}
	if filter.Category != "" {
		ds = ds.Where(goqu.Ex{"category": string(filter.Category)})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": string(filter.Status)})
	}
	if filter.NameQuery != "" {
		pattern := "%" + filter.NameQuery + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("first_name").ILike(pattern),
			goqu.I("last_name").ILike(pattern),
			goqu.I("patient_number").ILike(pattern),
		))
	}

	orderBy := filter.OrderBy
	if !validPatientOrderColumn(orderBy) {
		orderBy = "last_name"
	}
	ds = ds.Order(goqu.I(orderBy).Asc())

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

	return a.queryPatients(ctx, query, args)
}

func (a *PatientAdapter) getOne(ctx context.Context, where goqu.Expression) (*entities.Patient, error) {
	query, args, err := a.db.Select(patientColumns...).
		From("patients").
		Where(where).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	patient := &entities.Patient{}
	var preferredVendor sql.NullString
	var notFound bool

	err = withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		notFound = false
		row := a.client.DB().QueryRowContext(callCtx, query, args...)
		scanErr := row.Scan(
			&patient.ID,
			&patient.ClinicID,
			&patient.PatientNumber,
			&patient.FirstName,
			&patient.LastName,
			&patient.Category,
			&preferredVendor,
			&patient.Status,
			&patient.CreatedAt,
			&patient.UpdatedAt,
		)
		if scanErr == sql.ErrNoRows {
			// An empty result is an answer, not a transient failure.
			notFound = true
			return nil
		}
		return scanErr
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}
	if notFound {
		return nil, apperrors.NewNotFoundError("patient not found")
	}

	if preferredVendor.Valid {
		patient.PreferredVendorID = &preferredVendor.String
	}

	return patient, nil
}

func (a *PatientAdapter) queryPatients(ctx context.Context, query string, args []interface{}) ([]*entities.Patient, error) {
	var patients []*entities.Patient

	err := withReadRetry(ctx, a.client, func(callCtx context.Context) error {
		rows, queryErr := a.client.DB().QueryContext(callCtx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		patients = patients[:0]
		for rows.Next() {
			patient := &entities.Patient{}
			var preferredVendor sql.NullString

			if scanErr := rows.Scan(
				&patient.ID,
				&patient.ClinicID,
				&patient.PatientNumber,
				&patient.FirstName,
				&patient.LastName,
				&patient.Category,
				&preferredVendor,
				&patient.Status,
				&patient.CreatedAt,
				&patient.UpdatedAt,
			); scanErr != nil {
				return scanErr
			}

			if preferredVendor.Valid {
				patient.PreferredVendorID = &preferredVendor.String
			}
			patients = append(patients, patient)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}
	if patients == nil {
		patients = []*entities.Patient{}
	}

	return patients, nil
}

func validPatientOrderColumn(col string) bool {
	switch col {
	case "last_name", "first_name", "patient_number", "created_at", "status", "category":
		return true
	}
	return false
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
