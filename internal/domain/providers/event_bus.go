package providers

import (
	"context"

	"github.com/caredesk/patient-admin/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AdminEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AdminEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants
const (
	// EventChannelClinicUpdates is the channel carrying every clinic update
	EventChannelClinicUpdates = "clinic:updates"

	// EventChannelClinicPrefix is the prefix for clinic-specific channels
	EventChannelClinicPrefix = "clinic:"
)

// GetClinicChannel returns the channel name for a specific clinic
func GetClinicChannel(clinicID string) string {
	return EventChannelClinicPrefix + clinicID
}
