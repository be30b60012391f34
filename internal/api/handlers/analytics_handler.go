package handlers

import (
	"net/http"

	"github.com/caredesk/patient-admin/internal/application/services"
)

// AnalyticsHandler serves clinic activity analytics
type AnalyticsHandler struct {
	activityService *services.ActivityService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(activityService *services.ActivityService) *AnalyticsHandler {
	return &AnalyticsHandler{
		activityService: activityService,
	}
}

// GetMonthlySummaries handles GET /api/clinics/{id}/analytics/monthly
func (h *AnalyticsHandler) GetMonthlySummaries(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	summaries, err := h.activityService.MonthlySummaries(r.Context(), clinicID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"months": summaries,
		"count":  len(summaries),
	})
}

// GetNonOrdering handles GET /api/clinics/{id}/analytics/non-ordering
func (h *AnalyticsHandler) GetNonOrdering(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	groups, err := h.activityService.NonOrdering(r.Context(), clinicID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, groups)
}

// GetPatientActivity handles GET /api/clinics/{id}/analytics/activity
func (h *AnalyticsHandler) GetPatientActivity(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	activity, err := h.activityService.PatientActivity(r.Context(), clinicID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patients": activity,
		"count":    len(activity),
	})
}
