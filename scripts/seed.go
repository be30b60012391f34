package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/patient-admin/internal/adapters/database"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/infrastructure/clients/postgres"
	"github.com/caredesk/patient-admin/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	patientRepo := database.NewPatientAdapter(pgClient)
	clinicRepo := database.NewClinicAdapter(pgClient)
	vendorRepo := database.NewVendorAdapter(pgClient)
	reportRepo := database.NewPeriodReportAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				period_reports,
				patient_vendors,
				patients,
				vendors,
				clinics
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now().UTC()

	// 1. Seed clinic
	clinic := entities.Clinic{
		ID:          uuid.NewString(),
		Name:        "Lakeside Family Clinic",
		PhoneNumber: "555-0100",
		Email:       "admin@lakeside.example",
		Street:      "12 Harbor Rd",
		City:        "Madison",
		State:       "WI",
		ZipCode:     "53703",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := clinicRepo.Create(ctx, &clinic); err != nil {
		log.Fatalf("Failed to create clinic %s: %v", clinic.Name, err)
	}

	// 2. Seed vendors
	vendors := []entities.Vendor{
		{ID: uuid.NewString(), Name: "Greenleaf Supply Co", PhoneNumber: "555-0200", Email: "orders@greenleaf.example", ClinicID: &clinic.ID, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Name: "Harbor Pharmacy", PhoneNumber: "555-0300", Email: "reports@harborpharm.example", ClinicID: &clinic.ID, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	for i := range vendors {
		if err := vendorRepo.Create(ctx, &vendors[i]); err != nil {
			log.Printf("Failed to create vendor %s: %v", vendors[i].Name, err)
		}
	}

	// 3. Seed patients across both categories
	patients := []entities.Patient{
		{ID: uuid.NewString(), PatientNumber: "K1001", FirstName: "James", LastName: "Archer", Category: entities.CategoryVeteran, ClinicID: clinic.ID, Status: entities.PatientStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), PatientNumber: "K1002", FirstName: "Rosa", LastName: "Delgado", Category: entities.CategoryCivilian, ClinicID: clinic.ID, Status: entities.PatientStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), PatientNumber: "K1003", FirstName: "Miriam", LastName: "Okafor", Category: entities.CategoryVeteran, ClinicID: clinic.ID, Status: entities.PatientStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), PatientNumber: "K1004", FirstName: "Tom", LastName: "Becker", Category: entities.CategoryCivilian, ClinicID: clinic.ID, Status: entities.PatientStatusInactive, CreatedAt: now, UpdatedAt: now},
	}
	for i := range patients {
		if err := patientRepo.Create(ctx, &patients[i]); err != nil {
			log.Printf("Failed to create patient %s: %v", patients[i].PatientNumber, err)
		}
	}

	// 4. Associate the active patients with the first vendor
	for _, p := range patients[:3] {
		if err := vendorRepo.AssociatePatient(ctx, vendors[0].ID, p.ID); err != nil {
			log.Printf("Failed to associate patient %s: %v", p.PatientNumber, err)
		}
	}

	// 5. Seed three months of reports. The third patient stops ordering
	// after the first month so the non-ordering view has something to show.
	months := []time.Time{
		entities.NormalizeMonth(now.AddDate(0, -3, 0)),
		entities.NormalizeMonth(now.AddDate(0, -2, 0)),
		entities.NormalizeMonth(now.AddDate(0, -1, 0)),
	}

	reports := make([]*entities.PeriodReport, 0)
	for i, month := range months {
		for j, p := range patients[:2] {
			reports = append(reports, &entities.PeriodReport{
				ID:        uuid.NewString(),
				PatientID: p.ID,
				VendorID:  vendors[0].ID,
				ClinicID:  clinic.ID,
				Month:     month,
				Amount:    85.50 + float64(i*10+j*5),
				Product:   "Oil",
				CreatedAt: now,
			})
		}
	}
	reports = append(reports, &entities.PeriodReport{
		ID:        uuid.NewString(),
		PatientID: patients[2].ID,
		VendorID:  vendors[0].ID,
		ClinicID:  clinic.ID,
		Month:     months[0],
		Amount:    120.00,
		Product:   "Capsules",
		CreatedAt: now,
	})

	if err := reportRepo.BatchCreate(ctx, reports); err != nil {
		log.Fatalf("Failed to create period reports: %v", err)
	}

	log.Printf("Seeded 1 clinic, %d vendors, %d patients, %d reports", len(vendors), len(patients), len(reports))
}
