package routes

import (
	"net/http"

	"github.com/caredesk/patient-admin/internal/api/handlers"
	"github.com/caredesk/patient-admin/internal/api/middleware"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	patientHandler        *handlers.PatientHandler
	clinicHandler         *handlers.ClinicHandler
	vendorHandler         *handlers.VendorHandler
	ingestionHandler      *handlers.IngestionHandler
	analyticsHandler      *handlers.AnalyticsHandler
	reconciliationHandler *handlers.ReconciliationHandler
	periodReportHandler   *handlers.PeriodReportHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	patientHandler *handlers.PatientHandler,
	clinicHandler *handlers.ClinicHandler,
	vendorHandler *handlers.VendorHandler,
	ingestionHandler *handlers.IngestionHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	reconciliationHandler *handlers.ReconciliationHandler,
	periodReportHandler *handlers.PeriodReportHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		patientHandler:        patientHandler,
		clinicHandler:         clinicHandler,
		vendorHandler:         vendorHandler,
		ingestionHandler:      ingestionHandler,
		analyticsHandler:      analyticsHandler,
		reconciliationHandler: reconciliationHandler,
		periodReportHandler:   periodReportHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Patient endpoints
	r.mux.HandleFunc("GET /api/patients", r.patientHandler.ListPatients)
	r.mux.HandleFunc("POST /api/patients", r.patientHandler.CreatePatient)
	r.mux.HandleFunc("GET /api/patients/{id}", r.patientHandler.GetPatient)
	r.mux.HandleFunc("PATCH /api/patients/{id}", r.patientHandler.UpdatePatient)
	r.mux.HandleFunc("PATCH /api/patients/{id}/status", r.patientHandler.SetPatientStatus)
	r.mux.HandleFunc("DELETE /api/patients/{id}", r.patientHandler.DeletePatient)
	r.mux.HandleFunc("GET /api/patients/{id}/reports", r.periodReportHandler.ListPatientReports)

	// Clinic endpoints
	r.mux.HandleFunc("GET /api/clinics", r.clinicHandler.ListClinics)
	r.mux.HandleFunc("POST /api/clinics", r.clinicHandler.CreateClinic)
	r.mux.HandleFunc("GET /api/clinics/{id}", r.clinicHandler.GetClinic)
	r.mux.HandleFunc("PATCH /api/clinics/{id}", r.clinicHandler.UpdateClinic)
	r.mux.HandleFunc("DELETE /api/clinics/{id}", r.clinicHandler.DeleteClinic)

	// Vendor endpoints, including patient associations for reconciliation
	r.mux.HandleFunc("GET /api/vendors", r.vendorHandler.ListVendors)
	r.mux.HandleFunc("POST /api/vendors", r.vendorHandler.CreateVendor)
	r.mux.HandleFunc("GET /api/vendors/{id}", r.vendorHandler.GetVendor)
	r.mux.HandleFunc("PATCH /api/vendors/{id}", r.vendorHandler.UpdateVendor)
	r.mux.HandleFunc("DELETE /api/vendors/{id}", r.vendorHandler.DeleteVendor)
	r.mux.HandleFunc("GET /api/vendors/{id}/patients", r.vendorHandler.ListAssociatedPatients)
	r.mux.HandleFunc("PUT /api/vendors/{id}/patients/{patientId}", r.vendorHandler.AssociatePatient)
	r.mux.HandleFunc("DELETE /api/vendors/{id}/patients/{patientId}", r.vendorHandler.DissociatePatient)

	// Spreadsheet ingestion endpoint
	r.mux.HandleFunc("POST /api/clinics/{id}/imports", r.ingestionHandler.UploadSpreadsheet)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/clinics/{id}/analytics/monthly", r.analyticsHandler.GetMonthlySummaries)
	r.mux.HandleFunc("GET /api/clinics/{id}/analytics/non-ordering", r.analyticsHandler.GetNonOrdering)
	r.mux.HandleFunc("GET /api/clinics/{id}/analytics/activity", r.analyticsHandler.GetPatientActivity)

	// Reconciliation endpoint
	r.mux.HandleFunc("GET /api/vendors/{id}/reconciliation", r.reconciliationHandler.GetReconciliation)

	// Period report endpoints
	r.mux.HandleFunc("GET /api/reports", r.periodReportHandler.ListReports)
	r.mux.HandleFunc("DELETE /api/reports/{id}", r.periodReportHandler.DeleteReport)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
