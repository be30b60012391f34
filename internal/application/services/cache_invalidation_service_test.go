package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/providers"
	"github.com/caredesk/patient-admin/tests/mocks"
)

// stubEventBus hands out a pre-built channel so tests can push events
// directly without a running Redis instance.
type stubEventBus struct {
	events       chan *entities.AdminEvent
	subscribed   chan string
	subscribeErr error
}

func newStubEventBus() *stubEventBus {
	return &stubEventBus{
		events:     make(chan *entities.AdminEvent, 8),
		subscribed: make(chan string, 1),
	}
}

func (b *stubEventBus) Publish(ctx context.Context, channel string, event *entities.AdminEvent) error {
	b.events <- event
	return nil
}

func (b *stubEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AdminEvent, error) {
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	b.subscribed <- channel
	return b.events, nil
}

func (b *stubEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *stubEventBus) Close() error {
	close(b.events)
	return nil
}

func TestCacheInvalidationService_DropsAnalyticsAndResponseCaches(t *testing.T) {
	cache := new(mocks.MockCacheProvider)
	bus := newStubEventBus()

	analyticsDropped := make(chan string, 1)
	cache.On("DeleteByPrefix", mock.Anything, "analytics:clinic-1:").
		Run(func(args mock.Arguments) { analyticsDropped <- args.String(1) }).
		Return(nil)
	cache.On("DeleteByPrefix", mock.Anything, "http:cache:").Return(nil)

	svc := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	assert.Equal(t, providers.EventChannelClinicUpdates, <-bus.subscribed)

	event := entities.NewAdminEvent("clinic-1", entities.AdminEventTypeReportsIngested, map[string]interface{}{
		"vendor_id": "vendor-1",
	})
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelClinicUpdates, event))

	select {
	case prefix := <-analyticsDropped:
		assert.Equal(t, "analytics:clinic-1:", prefix)
	case <-time.After(2 * time.Second):
		t.Fatal("analytics cache was not invalidated")
	}

	cache.AssertCalled(t, "DeleteByPrefix", mock.Anything, "http:cache:")
}

func TestCacheInvalidationService_EventWithoutClinicOnlyDropsResponses(t *testing.T) {
	cache := new(mocks.MockCacheProvider)
	bus := newStubEventBus()

	responseDropped := make(chan struct{}, 1)
	cache.On("DeleteByPrefix", mock.Anything, "http:cache:").
		Run(func(mock.Arguments) { responseDropped <- struct{}{} }).
		Return(nil)

	svc := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, svc.Start())
	defer svc.Stop()
	<-bus.subscribed

	event := entities.NewAdminEvent("", entities.AdminEventTypePatientStatusChanged, nil)
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelClinicUpdates, event))

	select {
	case <-responseDropped:
	case <-time.After(2 * time.Second):
		t.Fatal("response cache was not invalidated")
	}

	for _, call := range cache.Calls {
		if call.Method == "DeleteByPrefix" {
			assert.Equal(t, "http:cache:", call.Arguments.String(1))
		}
	}
}

func TestCacheInvalidationService_StartFailsWhenSubscribeFails(t *testing.T) {
	cache := new(mocks.MockCacheProvider)
	bus := newStubEventBus()
	bus.subscribeErr = errors.New("redis down")

	svc := services.NewCacheInvalidationService(cache, bus)
	assert.Error(t, svc.Start())
}
