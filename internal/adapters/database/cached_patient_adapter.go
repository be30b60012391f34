package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/providers"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
)

// CachedPatientAdapter wraps PatientAdapter with read-through caching for the
// lookups the admin screens hammer. Natural-key and name lookups pass
// through uncached: they run inside ingestion, where a stale hit would
// shadow a row-level patient create.
type CachedPatientAdapter struct {
	adapter repositories.PatientRepository
	cache   providers.CacheProvider
}

// NewCachedPatientAdapter creates a new cached patient adapter
func NewCachedPatientAdapter(adapter repositories.PatientRepository, cache providers.CacheProvider) repositories.PatientRepository {
	return &CachedPatientAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	patientByIDTTL  = 300
	patientsListTTL = 120
)

func patientCacheKey(id string) string {
	return "patient:" + id
}

func patientsListCacheKey(filter repositories.PatientFilter) string {
	return fmt.Sprintf("patients:list:%s:%s:%s:%s:%s:%d:%d",
		filter.ClinicID, filter.Category, filter.Status, filter.NameQuery,
		filter.OrderBy, filter.Limit, filter.Offset)
}

// GetByID retrieves a patient by ID with caching
func (a *CachedPatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	cacheKey := patientCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var patient entities.Patient
		if err := json.Unmarshal(cached, &patient); err == nil {
			return &patient, nil
		}
	}

	patient, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.cacheSet(ctx, cacheKey, patient, patientByIDTTL)
	return patient, nil
}

// GetByIDs retrieves multiple patients by IDs, serving what it can from
// cache and fetching the rest in one query
func (a *CachedPatientAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Patient, error) {
	if len(ids) == 0 {
		return []*entities.Patient{}, nil
	}

	cached := make([]*entities.Patient, 0, len(ids))
	missing := make([]string, 0)

	for _, id := range ids {
		data, err := a.cache.Get(ctx, patientCacheKey(id))
		if err != nil {
			missing = append(missing, id)
			continue
		}
		var patient entities.Patient
		if err := json.Unmarshal(data, &patient); err != nil {
			missing = append(missing, id)
			continue
		}
		cached = append(cached, &patient)
	}

	if len(missing) == 0 {
		return cached, nil
	}

	fetched, err := a.adapter.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	for _, patient := range fetched {
		a.cacheSet(ctx, patientCacheKey(patient.ID), patient, patientByIDTTL)
	}

	return append(cached, fetched...), nil
}

// GetByNaturalKey passes through to the store
func (a *CachedPatientAdapter) GetByNaturalKey(ctx context.Context, clinicID, patientNumber string) (*entities.Patient, error) {
	return a.adapter.GetByNaturalKey(ctx, clinicID, patientNumber)
}

// GetByName passes through to the store
func (a *CachedPatientAdapter) GetByName(ctx context.Context, clinicID, firstName, lastName string) (*entities.Patient, error) {
	return a.adapter.GetByName(ctx, clinicID, firstName, lastName)
}

// List retrieves patients matching a filter with caching
func (a *CachedPatientAdapter) List(ctx context.Context, filter repositories.PatientFilter) ([]*entities.Patient, error) {
	cacheKey := patientsListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var patients []*entities.Patient
		if err := json.Unmarshal(cached, &patients); err == nil {
			return patients, nil
		}
	}

	patients, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	a.cacheSet(ctx, cacheKey, patients, patientsListTTL)
	return patients, nil
}

// Create creates a patient and invalidates list caches
func (a *CachedPatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	if err := a.adapter.Create(ctx, patient); err != nil {
		return err
	}

	a.invalidateLists(ctx)
	return nil
}

// Update updates a patient and invalidates its caches
func (a *CachedPatientAdapter) Update(ctx context.Context, patient *entities.Patient) error {
	if err := a.adapter.Update(ctx, patient); err != nil {
		return err
	}

	a.invalidatePatient(ctx, patient.ID)
	return nil
}

// Delete deletes a patient and invalidates its caches
func (a *CachedPatientAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}

	a.invalidatePatient(ctx, id)
	return nil
}

func (a *CachedPatientAdapter) cacheSet(ctx context.Context, key string, value interface{}, ttlSeconds int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttlSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache patient data")
	}
}

func (a *CachedPatientAdapter) invalidatePatient(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, patientCacheKey(id)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("patient_id", id).Msg("failed to invalidate patient cache")
	}
	a.invalidateLists(ctx)
}

func (a *CachedPatientAdapter) invalidateLists(ctx context.Context) {
	if err := a.cache.DeleteByPrefix(ctx, "patients:list:"); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to invalidate patient list caches")
	}
}
