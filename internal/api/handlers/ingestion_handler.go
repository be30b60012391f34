package handlers

import (
	"net/http"

	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/pkg/sheet"
)

// maxUploadBytes caps spreadsheet uploads at 20 MiB
const maxUploadBytes = 20 << 20

// ResponseCacheInvalidator drops cached HTTP responses after a write that
// changes what read endpoints return
type ResponseCacheInvalidator interface {
	InvalidateAll(r *http.Request)
}

// IngestionHandler handles spreadsheet upload requests
type IngestionHandler struct {
	ingestionService *services.IngestionService
	responseCache    ResponseCacheInvalidator
}

// NewIngestionHandler creates a new ingestion handler. responseCache may be
// nil when HTTP caching is disabled.
func NewIngestionHandler(ingestionService *services.IngestionService, responseCache ResponseCacheInvalidator) *IngestionHandler {
	return &IngestionHandler{
		ingestionService: ingestionService,
		responseCache:    responseCache,
	}
}

// UploadSpreadsheet handles POST /api/clinics/{id}/imports. The request is
// multipart form data with a "file" part holding the xlsx upload and form
// fields vendor_id, month (YYYY-MM) and kind.
func (h *IngestionHandler) UploadSpreadsheet(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithError(w, http.StatusBadRequest, "clinic ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	month, err := parseMonth(r.FormValue("month"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "month must be in YYYY-MM form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	rows, err := sheet.ExtractRows(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "could not read spreadsheet: not a valid xlsx file")
		return
	}

	params := services.IngestionParams{
		ClinicID: clinicID,
		VendorID: r.FormValue("vendor_id"),
		Month:    month,
		Kind:     services.IngestionKind(r.FormValue("kind")),
		Rows:     rows,
		ActorID:  r.Header.Get("X-Actor-ID"),
	}

	summary, err := h.ingestionService.Ingest(r.Context(), params)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if h.responseCache != nil {
		h.responseCache.InvalidateAll(r)
	}

	respondWithJSON(w, http.StatusOK, summary)
}
