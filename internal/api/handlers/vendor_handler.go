package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
)

// VendorHandler handles vendor-related HTTP requests, including the
// patient/vendor associations that scope reconciliation
type VendorHandler struct {
	vendorService *services.VendorService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService *services.VendorService) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
	}
}

// GetVendor handles GET /api/vendors/{id}
func (h *VendorHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	if vendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID is required")
		return
	}

	vendor, err := h.vendorService.Get(r.Context(), vendorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, vendor)
}

// ListVendors handles GET /api/vendors
func (h *VendorHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parsePagination(q.Get("limit"), q.Get("offset"))

	filter := repositories.VendorFilter{
		ClinicID:  q.Get("clinic_id"),
		NameQuery: q.Get("q"),
		Limit:     limit,
		Offset:    offset,
	}
	if v, err := strconv.ParseBool(q.Get("active")); err == nil {
		filter.IsActive = &v
	}

	vendors, err := h.vendorService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"vendors": vendors,
		"count":   len(vendors),
	})
}

// CreateVendor handles POST /api/vendors
func (h *VendorHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var vendor entities.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendor); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.vendorService.Create(r.Context(), &vendor); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, vendor)
}

// UpdateVendor handles PATCH /api/vendors/{id}
func (h *VendorHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	if vendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID is required")
		return
	}

	existing, err := h.vendorService.Get(r.Context(), vendorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	existing.ID = vendorID

	if err := h.vendorService.Update(r.Context(), existing); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, existing)
}

// DeleteVendor handles DELETE /api/vendors/{id}
func (h *VendorHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	if vendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID is required")
		return
	}

	if err := h.vendorService.Delete(r.Context(), vendorID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssociatePatient handles PUT /api/vendors/{id}/patients/{patientId}
func (h *VendorHandler) AssociatePatient(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	patientID := r.PathValue("patientId")
	if vendorID == "" || patientID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID and patient ID are required")
		return
	}

	if err := h.vendorService.AssociatePatient(r.Context(), vendorID, patientID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DissociatePatient handles DELETE /api/vendors/{id}/patients/{patientId}
func (h *VendorHandler) DissociatePatient(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	patientID := r.PathValue("patientId")
	if vendorID == "" || patientID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID and patient ID are required")
		return
	}

	if err := h.vendorService.DissociatePatient(r.Context(), vendorID, patientID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssociatedPatients handles GET /api/vendors/{id}/patients
func (h *VendorHandler) ListAssociatedPatients(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	if vendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID is required")
		return
	}

	patients, err := h.vendorService.AssociatedPatients(r.Context(), vendorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patients": patients,
		"count":    len(patients),
	})
}
