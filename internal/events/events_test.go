package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got []BookingEventPayload
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		var payload BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		got = append(got, payload)
		return nil
	})

	err := bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 7, ItemName: "Drill"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].BookingID)
	assert.Equal(t, "Drill", got[0].ItemName)
}

func TestEventBus_FansOutToAllHandlers(t *testing.T) {
	bus := NewEventBus()

	var calls int
	bus.Subscribe(EventBookingDecided, func(*Event) error { calls++; return nil })
	bus.Subscribe(EventBookingDecided, func(*Event) error { calls++; return errors.New("boom") })
	bus.Subscribe(EventBookingDecided, func(*Event) error { calls++; return nil })

	bus.Publish(&Event{Type: EventBookingDecided})
	// A failing handler does not stop the rest.
	assert.Equal(t, 3, calls)
}

func TestEventBus_UnknownTypeIsNoop(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(EventItemCreated, func(*Event) error {
		t.Fatal("handler should not fire")
		return nil
	})

	bus.Publish(&Event{Type: EventCommentCreated})
}

func TestEventBus_NilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventItemCreated, ItemEventPayload{ItemID: 1}))
}

func TestEventBus_StampsCreatedAt(t *testing.T) {
	bus := NewEventBus()

	event := &Event{Type: EventItemCreated}
	bus.Publish(event)
	assert.False(t, event.CreatedAt.IsZero())
}
