package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishJSON(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(TypeBookingCreated, func(e Event) { got = append(got, e) })
	bus.Subscribe(TypeBookingCreated, func(e Event) { got = append(got, e) })
	bus.Subscribe(TypeBookingCancelled, func(e Event) {
		t.Error("cancelled handler must not fire for created events")
	})

	err := bus.PublishJSON(TypeBookingCreated, map[string]string{"id": "bk_1"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
	assert.Equal(t, "bk_1", payload["id"])
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NoError(t, bus.PublishJSON(TypeBookingCancelled, struct{ ID string }{"bk_2"}))
}

func TestBus_UnmarshalablePayload(t *testing.T) {
	bus := NewBus()
	assert.Error(t, bus.PublishJSON(TypeBookingCreated, make(chan int)))
}
