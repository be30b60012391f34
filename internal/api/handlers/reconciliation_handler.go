package handlers

import (
	"net/http"

	"github.com/caredesk/patient-admin/internal/application/services"
)

// ReconciliationHandler serves vendor/month reconciliation reports
type ReconciliationHandler struct {
	reconciliationService *services.ReconciliationService
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(reconciliationService *services.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// GetReconciliation handles GET /api/vendors/{id}/reconciliation?month=YYYY-MM
func (h *ReconciliationHandler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	vendorID := r.PathValue("id")
	if vendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor ID is required")
		return
	}

	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "month must be in YYYY-MM form")
		return
	}

	result, err := h.reconciliationService.Reconcile(r.Context(), vendorID, month)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
