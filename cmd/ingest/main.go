package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caredesk/patient-admin/internal/adapters/database"
	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/infrastructure/clients/postgres"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
	"github.com/caredesk/patient-admin/pkg/config"
	"github.com/caredesk/patient-admin/pkg/sheet"
)

func main() {
	var clinicID string
	var vendorID string
	var monthStr string
	var kind string
	var dir string

	flag.StringVar(&clinicID, "clinic", "", "Clinic ID the files belong to")
	flag.StringVar(&vendorID, "vendor", "", "Vendor ID the files belong to")
	flag.StringVar(&monthStr, "month", "", "Reporting month (YYYY-MM)")
	flag.StringVar(&kind, "kind", string(services.IngestionKindVendorReport), "Ingestion kind: vendor_report or pharmacy_report")
	flag.StringVar(&dir, "dir", ".", "Directory of xlsx files to ingest")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	if clinicID == "" || vendorID == "" || monthStr == "" {
		logger.Fatal().Msg("--clinic, --vendor and --month are required")
	}

	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		logger.Fatal().Str("month", monthStr).Msg("month must be in YYYY-MM form")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	patientRepo := database.NewPatientAdapter(pgClient)
	reportRepo := database.NewPeriodReportAdapter(pgClient)
	svc := services.NewIngestionService(patientRepo, reportRepo, nil, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	files, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		logger.Fatal().Err(err).Str("dir", dir).Msg("failed to list spreadsheet files")
	}
	if len(files) == 0 {
		logger.Fatal().Str("dir", dir).Msg("no xlsx files found")
	}

	start := time.Now()
	failures := 0

	for _, path := range files {
		if ctx.Err() != nil {
			logger.Warn().Msg("interrupted, stopping")
			break
		}

		f, err := os.Open(path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("failed to open file")
			failures++
			continue
		}

		rows, err := sheet.ExtractRows(f)
		f.Close()
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("failed to read spreadsheet")
			failures++
			continue
		}

		summary, err := svc.Ingest(ctx, services.IngestionParams{
			ClinicID: clinicID,
			VendorID: vendorID,
			Month:    month,
			Kind:     services.IngestionKind(kind),
			Rows:     rows,
			ActorID:  "cli",
		})
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("ingestion failed")
			failures++
			continue
		}

		logger.Info().
			Str("file", filepath.Base(path)).
			Int("rows", summary.RowsProcessed).
			Int("patients_created", summary.PatientsCreated).
			Int("reports_emitted", summary.ReportsEmitted).
			Int("failed", summary.Failed).
			Msg("file ingested")
	}

	logger.Info().
		Int("files", len(files)).
		Int("failures", failures).
		Dur("elapsed", time.Since(start)).
		Msg("ingest run complete")

	if failures > 0 {
		os.Exit(1)
	}
}
