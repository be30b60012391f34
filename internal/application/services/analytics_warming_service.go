package services

import (
	"context"
	"time"

	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
)

// AnalyticsWarmingService precomputes the analytics views for every active
// clinic so the first admin request of the morning is served from cache. The
// activity service writes through its own cache, so warming is a read.
type AnalyticsWarmingService struct {
	clinicRepo repositories.ClinicRepository
	activity   *ActivityService
}

// NewAnalyticsWarmingService creates a new analytics warming service
func NewAnalyticsWarmingService(
	clinicRepo repositories.ClinicRepository,
	activity *ActivityService,
) *AnalyticsWarmingService {
	return &AnalyticsWarmingService{
		clinicRepo: clinicRepo,
		activity:   activity,
	}
}

// WarmCache recomputes monthly summaries and non-ordering groups for every
// active clinic
func (s *AnalyticsWarmingService) WarmCache(ctx context.Context) error {
	logger := observability.LoggerFromContext(ctx)

	active := true
	clinics, err := s.clinicRepo.List(ctx, repositories.ClinicFilter{
		IsActive: &active,
		Limit:    200,
	})
	if err != nil {
		return err
	}

	warmed := 0
	for _, clinic := range clinics {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := s.activity.MonthlySummaries(ctx, clinic.ID); err != nil {
			logger.Warn().Err(err).Str("clinic_id", clinic.ID).Msg("failed to warm monthly summaries")
			continue
		}
		if _, err := s.activity.NonOrdering(ctx, clinic.ID); err != nil {
			logger.Warn().Err(err).Str("clinic_id", clinic.ID).Msg("failed to warm non-ordering groups")
			continue
		}
		warmed++
	}

	logger.Debug().Int("clinics", warmed).Msg("analytics cache warmed")
	return nil
}

// StartPeriodicWarming runs WarmCache immediately and then on a ticker until
// ctx is canceled
func (s *AnalyticsWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	logger := observability.GetLogger()

	if err := s.WarmCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial analytics warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					logger.Warn().Err(err).Msg("periodic analytics warming failed")
				}
			}
		}
	}()
}
