package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/patient-admin/internal/domain/entities"
)

func testThresholds() Thresholds {
	return Thresholds{
		ByCategory: map[entities.Category]int{
			entities.CategoryVeteran:  2,
			entities.CategoryCivilian: 3,
		},
		NeverOrderedMonths: 12,
	}
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func activePatient(id string, category entities.Category) *entities.Patient {
	return &entities.Patient{
		ID:       id,
		Category: category,
		Status:   entities.PatientStatusActive,
	}
}

func report(patientID string, when time.Time, amount float64) *entities.PeriodReport {
	return &entities.PeriodReport{
		ID:        "r-" + patientID + when.Format("2006-01"),
		PatientID: patientID,
		Month:     when,
		Amount:    amount,
	}
}

func TestDerivePatientActivity_TotalSpentSumsAllReports(t *testing.T) {
	patients := []*entities.Patient{
		activePatient("p1", entities.CategoryVeteran),
		activePatient("p2", entities.CategoryCivilian),
	}
	reports := []*entities.PeriodReport{
		report("p1", month(2024, time.September), 100),
		report("p1", month(2024, time.October), 50.5),
		report("p2", month(2024, time.October), 20),
	}

	activities := DerivePatientActivity(patients, reports, testThresholds(), month(2024, time.November))

	require.Len(t, activities, 2)
	assert.Equal(t, 150.5, activities[0].TotalSpent)
	assert.Equal(t, 20.0, activities[1].TotalSpent)
}

func TestDerivePatientActivity_NoReportsMeansZeroSpendAndSentinel(t *testing.T) {
	patients := []*entities.Patient{activePatient("p1", entities.CategoryVeteran)}

	activities := DerivePatientActivity(patients, nil, testThresholds(), month(2024, time.November))

	require.Len(t, activities, 1)
	assert.Equal(t, 0.0, activities[0].TotalSpent)
	assert.Nil(t, activities[0].LastActivity)
	assert.Equal(t, 12, activities[0].MonthsInactive)
}

func TestDerivePatientActivity_MonthsInactive(t *testing.T) {
	patients := []*entities.Patient{activePatient("p1", entities.CategoryVeteran)}
	reports := []*entities.PeriodReport{
		report("p1", month(2024, time.July), 10),
		report("p1", month(2024, time.September), 10),
	}

	activities := DerivePatientActivity(patients, reports, testThresholds(), month(2024, time.November))

	require.NotNil(t, activities[0].LastActivity)
	assert.Equal(t, month(2024, time.September), *activities[0].LastActivity)
	assert.Equal(t, 2, activities[0].MonthsInactive)
}

func TestDerivePatientActivity_FutureActivityClampsToZero(t *testing.T) {
	patients := []*entities.Patient{activePatient("p1", entities.CategoryVeteran)}
	reports := []*entities.PeriodReport{
		report("p1", month(2025, time.February), 10),
	}

	activities := DerivePatientActivity(patients, reports, testThresholds(), month(2024, time.November))

	assert.Equal(t, 0, activities[0].MonthsInactive)
}

func TestDeriveMonthlySummaries_GroupsByCalendarMonth(t *testing.T) {
	patients := []*entities.Patient{
		activePatient("p1", entities.CategoryVeteran),
		activePatient("p2", entities.CategoryVeteran),
	}
	reports := []*entities.PeriodReport{
		report("p1", time.Date(2024, time.October, 15, 0, 0, 0, 0, time.UTC), 100),
		report("p2", time.Date(2024, time.October, 3, 0, 0, 0, 0, time.UTC), 40),
		report("p1", time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC), 25),
	}

	summaries := DeriveMonthlySummaries(patients, reports, testThresholds())

	require.Len(t, summaries, 2)
	// Sorted descending: November first.
	assert.Equal(t, "2024-11", summaries[0].Month)
	assert.Equal(t, "2024-10", summaries[1].Month)

	october := summaries[1].Stats[entities.CategoryVeteran]
	assert.Equal(t, 2, october.OrderingPatients)
	assert.Equal(t, 140.0, october.Revenue)
	assert.Equal(t, 140.0, summaries[1].TotalRevenue)
}

func TestDeriveMonthlySummaries_PercentOrderedUsesCurrentActiveCount(t *testing.T) {
	patients := []*entities.Patient{
		activePatient("p1", entities.CategoryVeteran),
		activePatient("p2", entities.CategoryVeteran),
		activePatient("p3", entities.CategoryVeteran),
		activePatient("p4", entities.CategoryVeteran),
		{ID: "p5", Category: entities.CategoryVeteran, Status: entities.PatientStatusInactive},
	}
	reports := []*entities.PeriodReport{
		report("p1", month(2024, time.October), 10),
		report("p2", month(2024, time.October), 10),
	}

	summaries := DeriveMonthlySummaries(patients, reports, testThresholds())

	require.Len(t, summaries, 1)
	stats := summaries[0].Stats[entities.CategoryVeteran]
	assert.Equal(t, 4, stats.ActivePatients)
	assert.Equal(t, 50.0, stats.PercentOrdered)
}

func TestDeriveMonthlySummaries_ZeroDenominator(t *testing.T) {
	patients := []*entities.Patient{
		{ID: "p1", Category: entities.CategoryVeteran, Status: entities.PatientStatusInactive},
	}
	reports := []*entities.PeriodReport{
		report("p1", month(2024, time.October), 10),
	}

	summaries := DeriveMonthlySummaries(patients, reports, testThresholds())

	require.Len(t, summaries, 1)
	stats := summaries[0].Stats[entities.CategoryVeteran]
	assert.Equal(t, 0, stats.ActivePatients)
	assert.Equal(t, 0.0, stats.PercentOrdered)
}

func TestDeriveMonthlySummaries_EmptyInputs(t *testing.T) {
	summaries := DeriveMonthlySummaries(nil, nil, testThresholds())
	assert.Empty(t, summaries)
}

func TestClassifyNonOrdering_NeverOrderedSentinel(t *testing.T) {
	patients := []*entities.Patient{activePatient("p1", entities.CategoryVeteran)}

	classified := ClassifyNonOrdering(patients, nil, testThresholds(), month(2024, time.November))

	veterans := classified[entities.CategoryVeteran]
	require.Len(t, veterans, 1)
	assert.Equal(t, "p1", veterans[0].Patient.ID)
	assert.Equal(t, 12, veterans[0].MonthsInactive)
	assert.Empty(t, classified[entities.CategoryCivilian])
}

func TestClassifyNonOrdering_PerCategoryThresholds(t *testing.T) {
	// Both last ordered 2 months ago; only the veteran threshold (2) fires,
	// the civilian threshold (3) does not.
	patients := []*entities.Patient{
		activePatient("vet", entities.CategoryVeteran),
		activePatient("civ", entities.CategoryCivilian),
	}
	reports := []*entities.PeriodReport{
		report("vet", month(2024, time.September), 10),
		report("civ", month(2024, time.September), 10),
	}

	classified := ClassifyNonOrdering(patients, reports, testThresholds(), month(2024, time.November))

	assert.Len(t, classified[entities.CategoryVeteran], 1)
	assert.Empty(t, classified[entities.CategoryCivilian])
}

func TestClassifyNonOrdering_SkipsInactivePatients(t *testing.T) {
	patients := []*entities.Patient{
		{ID: "p1", Category: entities.CategoryVeteran, Status: entities.PatientStatusInactive},
	}

	classified := ClassifyNonOrdering(patients, nil, testThresholds(), month(2024, time.November))

	assert.Empty(t, classified[entities.CategoryVeteran])
}

func TestClassifyNonOrdering_MonotonicInThreshold(t *testing.T) {
	patients := []*entities.Patient{
		activePatient("p1", entities.CategoryVeteran),
		activePatient("p2", entities.CategoryVeteran),
		activePatient("p3", entities.CategoryVeteran),
	}
	reports := []*entities.PeriodReport{
		report("p1", month(2024, time.October), 10),
		report("p2", month(2024, time.August), 10),
		report("p3", month(2024, time.March), 10),
	}
	now := month(2024, time.November)

	prevCount := len(patients) + 1
	for threshold := 1; threshold <= 12; threshold++ {
		thresholds := testThresholds()
		thresholds.ByCategory[entities.CategoryVeteran] = threshold

		count := len(ClassifyNonOrdering(patients, reports, thresholds, now)[entities.CategoryVeteran])
		assert.LessOrEqual(t, count, prevCount, "raising the threshold must never add patients")
		prevCount = count
	}
}
