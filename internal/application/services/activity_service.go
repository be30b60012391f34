package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/providers"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
)

const analyticsCacheTTLSeconds = 300

// Thresholds holds the per-category inactivity thresholds, in whole calendar
// months, plus the sentinel assigned to patients who never ordered.
type Thresholds struct {
	ByCategory         map[entities.Category]int
	NeverOrderedMonths int
}

// ForCategory returns the non-ordering threshold for a category. Unknown
// categories get the civilian threshold.
func (t Thresholds) ForCategory(c entities.Category) int {
	if months, ok := t.ByCategory[c]; ok {
		return months
	}
	return t.ByCategory[entities.CategoryCivilian]
}

// Categories returns the configured category axis in stable order
func (t Thresholds) Categories() []entities.Category {
	cats := make([]entities.Category, 0, len(t.ByCategory))
	for c := range t.ByCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// PatientActivity carries a patient with its derived activity fields
type PatientActivity struct {
	Patient        *entities.Patient `json:"patient"`
	TotalSpent     float64           `json:"total_spent"`
	LastActivity   *time.Time        `json:"last_activity,omitempty"`
	MonthsInactive int               `json:"months_inactive"`
}

// CategoryMonthStats is one month's aggregate for one patient category
type CategoryMonthStats struct {
	OrderingPatients int     `json:"ordering_patients"`
	Revenue          float64 `json:"revenue"`
	ActivePatients   int     `json:"active_patients"`
	PercentOrdered   float64 `json:"percent_ordered"`
}

// MonthlySummary is one calendar month's aggregate split by category
type MonthlySummary struct {
	Month        string                                    `json:"month"`
	Stats        map[entities.Category]*CategoryMonthStats `json:"stats"`
	TotalRevenue float64                                   `json:"total_revenue"`
}

// DerivePatientActivity computes total spend, last activity month and months
// inactive for every patient. Pure: no I/O, deterministic for a fixed now.
func DerivePatientActivity(patients []*entities.Patient, reports []*entities.PeriodReport, thresholds Thresholds, now time.Time) []*PatientActivity {
	spentByPatient := make(map[string]float64, len(patients))
	lastByPatient := make(map[string]time.Time, len(patients))

	for _, report := range reports {
		spentByPatient[report.PatientID] += report.Amount
		month := entities.NormalizeMonth(report.Month)
		if existing, ok := lastByPatient[report.PatientID]; !ok || month.After(existing) {
			lastByPatient[report.PatientID] = month
		}
	}

	currentMonth := entities.NormalizeMonth(now)
	activities := make([]*PatientActivity, 0, len(patients))

	for _, patient := range patients {
		activity := &PatientActivity{
			Patient:    patient,
			TotalSpent: spentByPatient[patient.ID],
		}

		if last, ok := lastByPatient[patient.ID]; ok {
			lastCopy := last
			activity.LastActivity = &lastCopy
			activity.MonthsInactive = entities.MonthsBetween(last, currentMonth)
		} else {
			activity.MonthsInactive = thresholds.NeverOrderedMonths
		}

		activities = append(activities, activity)
	}

	return activities
}

// DeriveMonthlySummaries groups reports into calendar-month buckets and
// computes per-category ordering counts, revenue and percent ordered.
//
// The percent-ordered denominator is the count of currently active patients
// in the category, applied uniformly to every historical month. This is a
// known approximation: rosters that changed materially over time will skew
// old months.
func DeriveMonthlySummaries(patients []*entities.Patient, reports []*entities.PeriodReport, thresholds Thresholds) []*MonthlySummary {
	categoryByPatient := make(map[string]entities.Category, len(patients))
	activeByCategory := make(map[entities.Category]int)

	for _, patient := range patients {
		categoryByPatient[patient.ID] = patient.Category
		if patient.IsActive() {
			activeByCategory[patient.Category]++
		}
	}

	type bucket struct {
		orderers map[entities.Category]map[string]struct{}
		revenue  map[entities.Category]float64
		total    float64
	}
	buckets := make(map[string]*bucket)

	for _, report := range reports {
		key := entities.MonthKey(report.Month)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				orderers: make(map[entities.Category]map[string]struct{}),
				revenue:  make(map[entities.Category]float64),
			}
			buckets[key] = b
		}

		category, ok := categoryByPatient[report.PatientID]
		if !ok {
			// Report for a patient outside the set; count revenue in the
			// default category rather than dropping the money.
			category = entities.CategoryCivilian
		}

		if b.orderers[category] == nil {
			b.orderers[category] = make(map[string]struct{})
		}
		b.orderers[category][report.PatientID] = struct{}{}
		b.revenue[category] += report.Amount
		b.total += report.Amount
	}

	summaries := make([]*MonthlySummary, 0, len(buckets))
	for key, b := range buckets {
		summary := &MonthlySummary{
			Month:        key,
			Stats:        make(map[entities.Category]*CategoryMonthStats),
			TotalRevenue: b.total,
		}

		for _, category := range thresholds.Categories() {
			stats := &CategoryMonthStats{
				OrderingPatients: len(b.orderers[category]),
				Revenue:          b.revenue[category],
				ActivePatients:   activeByCategory[category],
			}
			if stats.ActivePatients > 0 {
				stats.PercentOrdered = float64(stats.OrderingPatients) / float64(stats.ActivePatients) * 100
			}
			summary.Stats[category] = stats
		}

		summaries = append(summaries, summary)
	}

	// "YYYY-MM" keys sort lexicographically in chronological order.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Month > summaries[j].Month
	})

	return summaries
}

// ClassifyNonOrdering returns, per category, the active patients whose last
// activity is at least the category's threshold months ago. Patients with no
// activity at all carry the never-ordered sentinel and always classify.
func ClassifyNonOrdering(patients []*entities.Patient, reports []*entities.PeriodReport, thresholds Thresholds, now time.Time) map[entities.Category][]*PatientActivity {
	result := make(map[entities.Category][]*PatientActivity)
	for _, category := range thresholds.Categories() {
		result[category] = []*PatientActivity{}
	}

	for _, activity := range DerivePatientActivity(patients, reports, thresholds, now) {
		if !activity.Patient.IsActive() {
			continue
		}
		category := activity.Patient.Category
		if activity.MonthsInactive >= thresholds.ForCategory(category) {
			result[category] = append(result[category], activity)
		}
	}

	return result
}

// ActivityService fetches patient and report data and serves the derived
// activity view models, memoizing results per clinic.
type ActivityService struct {
	patientRepo repositories.PatientRepository
	reportRepo  repositories.PeriodReportRepository
	cache       providers.CacheProvider
	thresholds  Thresholds
	now         func() time.Time
}

// NewActivityService creates a new activity service. cache may be nil, in
// which case every call recomputes.
func NewActivityService(
	patientRepo repositories.PatientRepository,
	reportRepo repositories.PeriodReportRepository,
	cache providers.CacheProvider,
	thresholds Thresholds,
) *ActivityService {
	return &ActivityService{
		patientRepo: patientRepo,
		reportRepo:  reportRepo,
		cache:       cache,
		thresholds:  thresholds,
		now:         time.Now,
	}
}

func analyticsCachePrefix(clinicID string) string {
	return "analytics:" + clinicID + ":"
}

// MonthlySummaries returns the month-by-month aggregate for a clinic
func (s *ActivityService) MonthlySummaries(ctx context.Context, clinicID string) ([]*MonthlySummary, error) {
	cacheKey := analyticsCachePrefix(clinicID) + "monthly"

	var cached []*MonthlySummary
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	patients, reports, err := s.fetch(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	summaries := DeriveMonthlySummaries(patients, reports, s.thresholds)
	s.writeCache(ctx, cacheKey, summaries)
	return summaries, nil
}

// NonOrdering returns the per-category non-ordering patient lists for a clinic
func (s *ActivityService) NonOrdering(ctx context.Context, clinicID string) (map[entities.Category][]*PatientActivity, error) {
	cacheKey := analyticsCachePrefix(clinicID) + "non-ordering"

	var cached map[entities.Category][]*PatientActivity
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	patients, reports, err := s.fetch(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	classified := ClassifyNonOrdering(patients, reports, s.thresholds, s.now())
	s.writeCache(ctx, cacheKey, classified)
	return classified, nil
}

// PatientActivity returns per-patient derived activity for a clinic
func (s *ActivityService) PatientActivity(ctx context.Context, clinicID string) ([]*PatientActivity, error) {
	patients, reports, err := s.fetch(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	return DerivePatientActivity(patients, reports, s.thresholds, s.now()), nil
}

// InvalidateClinic drops every memoized analytics result for a clinic.
// Called after ingestion and patient mutations.
func (s *ActivityService) InvalidateClinic(ctx context.Context, clinicID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, analyticsCachePrefix(clinicID)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("clinic_id", clinicID).
			Msg("failed to invalidate analytics cache")
	}
}

func (s *ActivityService) fetch(ctx context.Context, clinicID string) ([]*entities.Patient, []*entities.PeriodReport, error) {
	patients, err := s.patientRepo.List(ctx, repositories.PatientFilter{ClinicID: clinicID})
	if err != nil {
		return nil, nil, err
	}

	reports, err := s.reportRepo.List(ctx, repositories.PeriodReportFilter{ClinicID: clinicID})
	if err != nil {
		return nil, nil, err
	}

	return patients, reports, nil
}

func (s *ActivityService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *ActivityService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, analyticsCacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("key", key).
			Msg("failed to write analytics cache")
	}
}
