package services

import (
	"context"
	"fmt"
	"time"

	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/providers"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
)

// CacheInvalidationService drops cached analytics and HTTP responses when
// another API instance reports a change. The local instance invalidates its
// own writes directly; this covers writes that happened elsewhere.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelClinicUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to clinic updates: %w", err)
	}

	go s.processEvents(eventChan)
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.AdminEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.AdminEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.GetLogger()
	logger.Debug().
		Str("event_id", event.ID).
		Str("clinic_id", event.ClinicID).
		Str("event_type", string(event.EventType)).
		Msg("processing cache invalidation")

	if event.ClinicID != "" {
		if err := s.cache.DeleteByPrefix(ctx, analyticsCachePrefix(event.ClinicID)); err != nil {
			logger.Warn().Err(err).Str("clinic_id", event.ClinicID).Msg("failed to invalidate analytics cache")
		}
	}

	// Cached HTTP responses may embed data from any clinic, so they all go.
	if err := s.cache.DeleteByPrefix(ctx, "http:cache:"); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate http response cache")
	}
}
