package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
)

// ClinicHandler handles clinic-related HTTP requests
type ClinicHandler struct {
	clinicService *services.ClinicService
}

// NewClinicHandler creates a new clinic handler
func NewClinicHandler(clinicService *services.ClinicService) *ClinicHandler {
	return &ClinicHandler{
		clinicService: clinicService,
	}
}

// GetClinic handles GET /api/clinics/{id}
func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	clinic, err := h.clinicService.Get(r.Context(), clinicID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, clinic)
}

// ListClinics handles GET /api/clinics
func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parsePagination(q.Get("limit"), q.Get("offset"))

	filter := repositories.ClinicFilter{
		NameQuery: q.Get("q"),
		Limit:     limit,
		Offset:    offset,
	}
	if v, err := strconv.ParseBool(q.Get("active")); err == nil {
		filter.IsActive = &v
	}

	clinics, err := h.clinicService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinics": clinics,
		"count":   len(clinics),
	})
}

// CreateClinic handles POST /api/clinics
func (h *ClinicHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var clinic entities.Clinic
	if err := json.NewDecoder(r.Body).Decode(&clinic); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.clinicService.Create(r.Context(), &clinic); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, clinic)
}

// UpdateClinic handles PATCH /api/clinics/{id}
func (h *ClinicHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	existing, err := h.clinicService.Get(r.Context(), clinicID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	existing.ID = clinicID

	if err := h.clinicService.Update(r.Context(), existing); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, existing)
}

// DeleteClinic handles DELETE /api/clinics/{id}
func (h *ClinicHandler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	if err := h.clinicService.Delete(r.Context(), clinicID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
