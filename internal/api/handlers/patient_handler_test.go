package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/patient-admin/internal/api/handlers"
	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	apperrors "github.com/caredesk/patient-admin/pkg/errors"
	"github.com/caredesk/patient-admin/tests/mocks"
)

func newPatientMux(repo repositories.PatientRepository) *http.ServeMux {
	handler := handlers.NewPatientHandler(services.NewPatientService(repo, nil))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/patients", handler.ListPatients)
	mux.HandleFunc("POST /api/patients", handler.CreatePatient)
	mux.HandleFunc("GET /api/patients/{id}", handler.GetPatient)
	mux.HandleFunc("PATCH /api/patients/{id}/status", handler.SetPatientStatus)
	mux.HandleFunc("DELETE /api/patients/{id}", handler.DeletePatient)
	return mux
}

func TestGetPatient_ReturnsPatient(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	repo.On("GetByID", mock.Anything, "pat-1").Return(&entities.Patient{
		ID:            "pat-1",
		PatientNumber: "K1001",
		FirstName:     "Jane",
		LastName:      "Doe",
		Category:      entities.CategoryVeteran,
		ClinicID:      "clinic-1",
		Status:        entities.PatientStatusActive,
	}, nil)

	rec := httptest.NewRecorder()
	newPatientMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients/pat-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got entities.Patient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "K1001", got.PatientNumber)
	assert.Equal(t, entities.CategoryVeteran, got.Category)
}

func TestGetPatient_NotFoundMapsTo404(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("patient not found"))

	rec := httptest.NewRecorder()
	newPatientMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "patient not found", body["error"])
}

func TestListPatients_AppliesFilterAndPaginationDefaults(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.PatientFilter) bool {
		return f.ClinicID == "clinic-1" &&
			f.Category == entities.CategoryCivilian &&
			f.Limit == 30 && f.Offset == 0
	})).Return([]*entities.Patient{{ID: "pat-1"}, {ID: "pat-2"}}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/patients?clinic_id=clinic-1&category=civilian", nil)
	newPatientMux(repo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Patients []*entities.Patient `json:"patients"`
		Count    int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Patients, 2)
}

func TestCreatePatient_MissingClinicIs400(t *testing.T) {
	repo := new(mocks.MockPatientRepository)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/patients",
		strings.NewReader(`{"first_name":"Jane","last_name":"Doe"}`))
	newPatientMux(repo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestCreatePatient_DuplicateNumberIs409(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	repo.On("GetByNaturalKey", mock.Anything, "clinic-1", "K1001").
		Return(&entities.Patient{ID: "pat-1"}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/patients",
		strings.NewReader(`{"clinic_id":"clinic-1","patient_number":"K1001","first_name":"Jane"}`))
	newPatientMux(repo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestSetPatientStatus_UpdatesStatus(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	repo.On("GetByID", mock.Anything, "pat-1").Return(&entities.Patient{
		ID:       "pat-1",
		ClinicID: "clinic-1",
		Status:   entities.PatientStatusActive,
	}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *entities.Patient) bool {
		return p.ID == "pat-1" && p.Status == entities.PatientStatusInactive
	})).Return(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/patients/pat-1/status",
		strings.NewReader(`{"status":"inactive"}`))
	newPatientMux(repo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got entities.Patient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, entities.PatientStatusInactive, got.Status)
	repo.AssertExpectations(t)
}

func TestSetPatientStatus_RejectsUnknownStatus(t *testing.T) {
	repo := new(mocks.MockPatientRepository)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/patients/pat-1/status",
		strings.NewReader(`{"status":"archived"}`))
	newPatientMux(repo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Update")
}

func TestDeletePatient_Returns204(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	repo.On("GetByID", mock.Anything, "pat-1").Return(&entities.Patient{ID: "pat-1", ClinicID: "clinic-1"}, nil)
	repo.On("Delete", mock.Anything, "pat-1").Return(nil)

	rec := httptest.NewRecorder()
	newPatientMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/patients/pat-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}
