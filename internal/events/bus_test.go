package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/planet-pizzaria/internal/events"
)

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitDispatchesEvent(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 19, 30, 0, 0, time.UTC)
	notifier := &captureNotifier{}
	bus := events.Bus{
		Notifiers: []events.Notifier{notifier},
		Now:       func() time.Time { return fixed },
	}

	payload := map[string]any{"number": 1}
	event, err := bus.Emit(context.Background(), events.TopicOrderCreated, "0001", payload)
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)
	require.Equal(t, fixed, event.OccurredAt)
	require.Equal(t, "0001", event.AggregateID)
	require.JSONEq(t, `{"number":1}`, string(event.Payload))
	require.Equal(t, payload, event.Data)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.EqualValues(t, 1, decoded["number"])
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	first := &captureNotifier{err: errors.New("disk full")}
	second := &captureNotifier{}
	bus := events.Bus{}
	bus.Subscribe(first)
	bus.Subscribe(nil)
	bus.Subscribe(second)

	_, err := bus.Emit(context.Background(), events.TopicProductToggled, "id_3", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Len(t, second.events, 1)
	require.JSONEq(t, `{}`, string(second.events[0].Payload))
}

func TestEmitRejectsInvalidInput(t *testing.T) {
	bus := &events.Bus{}
	_, err := bus.Emit(context.Background(), " ", "id_1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOrderCreated, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOrderCreated, "id_1", "{not json")
	require.Error(t, err)

	var nilBus *events.Bus
	_, err = nilBus.Emit(context.Background(), events.TopicOrderCreated, "id_1", nil)
	require.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	bus := events.Bus{Notifiers: []events.Notifier{events.LogNotifier(zerolog.New(&buf).Level(zerolog.DebugLevel))}}
	_, err := bus.Emit(context.Background(), events.TopicCustomerRegistered, "id_9", map[string]string{"name": "Ana"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"customer.registered"`)
	require.Contains(t, buf.String(), `"aggregate_id":"id_9"`)
}
