package ports

import (
	"context"
	"reflect"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// EventHandlerFunc handles one published event.
type EventHandlerFunc func(ctx context.Context, event domain.Event)

// EventSubscriber defines the interface for subscribing to events.
// Handlers are invoked in publish order.
type EventSubscriber interface {
	Subscribe(eventType reflect.Type, handler EventHandlerFunc) error
}
