package infrastructure

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

func TestChannelEventBus_DeliversInPublishOrder(t *testing.T) {
	bus := NewChannelEventBus(0)
	defer bus.Close()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan struct{})

	record := func(name string) func(context.Context, domain.Event) {
		return func(_ context.Context, _ domain.Event) {
			mu.Lock()
			got = append(got, name)
			if len(got) == 3 {
				close(done)
			}
			mu.Unlock()
		}
	}

	_ = bus.Subscribe(reflect.TypeFor[domain.PlaybackFinishedEvent](), record("finished"))
	_ = bus.Subscribe(reflect.TypeFor[domain.PlaybackStartedEvent](), record("started"))
	_ = bus.Subscribe(reflect.TypeFor[domain.PlayerIdleEvent](), record("idle"))

	guildID := snowflake.ID(1)
	_ = bus.Publish(domain.PlaybackFinishedEvent{GuildID: guildID})
	_ = bus.Publish(domain.PlaybackStartedEvent{GuildID: guildID})
	_ = bus.Publish(domain.PlayerIdleEvent{GuildID: guildID})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}

	want := []string{"finished", "started", "idle"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestChannelEventBus_OnlyMatchingHandlers(t *testing.T) {
	bus := NewChannelEventBus(0)
	defer bus.Close()

	received := make(chan domain.Event, 2)
	_ = bus.Subscribe(reflect.TypeFor[domain.TrackEndedEvent](), func(_ context.Context, e domain.Event) {
		received <- e
	})

	_ = bus.Publish(domain.PlayerIdleEvent{GuildID: 1})
	_ = bus.Publish(domain.TrackEndedEvent{GuildID: 2, Reason: domain.TrackEndFinished})

	select {
	case e := <-received:
		ended, ok := e.(domain.TrackEndedEvent)
		if !ok || ended.GuildID != 2 {
			t.Errorf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestChannelEventBus_SurvivesHandlerPanic(t *testing.T) {
	bus := NewChannelEventBus(0)
	defer bus.Close()

	received := make(chan struct{}, 1)
	eventType := reflect.TypeFor[domain.PlayerIdleEvent]()
	_ = bus.Subscribe(eventType, func(context.Context, domain.Event) { panic("boom") })
	_ = bus.Subscribe(eventType, func(context.Context, domain.Event) { received <- struct{}{} })

	_ = bus.Publish(domain.PlayerIdleEvent{GuildID: 1})

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("expected second handler to run after panic")
	}
}

func TestChannelEventBus_DropsWhenFull(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = bus.Subscribe(reflect.TypeFor[domain.PlayerIdleEvent](), func(context.Context, domain.Event) {
		select {
		case <-started:
		default:
			close(started)
		}
		<-block
	})

	_ = bus.Publish(domain.PlayerIdleEvent{GuildID: 1})
	<-started
	_ = bus.Publish(domain.PlayerIdleEvent{GuildID: 1}) // fills the buffer

	if err := bus.Publish(domain.PlayerIdleEvent{GuildID: 1}); !errors.Is(err, ErrEventBufferFull) {
		t.Errorf("expected ErrEventBufferFull, got %v", err)
	}
	close(block)
}

func TestChannelEventBus_Close(t *testing.T) {
	bus := NewChannelEventBus(0)
	bus.Close()
	bus.Close() // idempotent

	if err := bus.Publish(domain.PlayerIdleEvent{GuildID: 1}); !errors.Is(err, ErrEventBusClosed) {
		t.Errorf("expected ErrEventBusClosed, got %v", err)
	}
	err := bus.Subscribe(reflect.TypeFor[domain.PlayerIdleEvent](), func(context.Context, domain.Event) {})
	if !errors.Is(err, ErrEventBusClosed) {
		t.Errorf("expected ErrEventBusClosed, got %v", err)
	}
}

func TestChannelEventBus_RejectsNonEventTypes(t *testing.T) {
	bus := NewChannelEventBus(0)
	defer bus.Close()

	if err := bus.Subscribe(reflect.TypeFor[string](), func(context.Context, domain.Event) {}); err == nil {
		t.Error("expected error for non-event type")
	}
}
