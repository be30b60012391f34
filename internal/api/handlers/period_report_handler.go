package handlers

import (
	"net/http"

	"github.com/caredesk/patient-admin/internal/domain/repositories"
)

// PeriodReportHandler serves stored period reports
type PeriodReportHandler struct {
	reportRepo repositories.PeriodReportRepository
}

// NewPeriodReportHandler creates a new period report handler
func NewPeriodReportHandler(reportRepo repositories.PeriodReportRepository) *PeriodReportHandler {
	return &PeriodReportHandler{
		reportRepo: reportRepo,
	}
}

// ListReports handles GET /api/reports
func (h *PeriodReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parsePagination(q.Get("limit"), q.Get("offset"))

	filter := repositories.PeriodReportFilter{
		ClinicID:  q.Get("clinic_id"),
		VendorID:  q.Get("vendor_id"),
		PatientID: q.Get("patient_id"),
		Limit:     limit,
		Offset:    offset,
	}

	if from, err := parseMonth(q.Get("month_from")); err == nil {
		filter.MonthFrom = &from
	}
	if to, err := parseMonth(q.Get("month_to")); err == nil {
		filter.MonthTo = &to
	}

	reports, err := h.reportRepo.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// ListPatientReports handles GET /api/patients/{id}/reports
func (h *PeriodReportHandler) ListPatientReports(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	q := r.URL.Query()
	limit, offset := parsePagination(q.Get("limit"), q.Get("offset"))

	reports, err := h.reportRepo.List(r.Context(), repositories.PeriodReportFilter{
		PatientID: patientID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// DeleteReport handles DELETE /api/reports/{id}
func (h *PeriodReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("id")
	if reportID == "" {
		respondWithError(w, http.StatusBadRequest, "report ID is required")
		return
	}

	if err := h.reportRepo.Delete(r.Context(), reportID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
