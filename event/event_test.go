package event

import (
	"context"
	"testing"
	"time"

	"github.com/awantoch/flowviz/config"
	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestEventBus_RoundTrip(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []byte, 1)
	require.NoError(t, bus.Subscribe(ctx, "test-topic", func(p []byte) { got <- p }))

	require.NoError(t, bus.Publish(ctx, "test-topic", "hello world"))
	assert.Equal(t, "hello world", string(receive(t, got)))
}

func TestEventBus_RenderedPayload(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(utils.WithRequestID(context.Background(), "req-1"))
	defer cancel()

	got := make(chan []byte, 1)
	require.NoError(t, bus.Subscribe(ctx, "diagram.rendered", func(p []byte) { got <- p }))

	r := &model.Render{
		ID:        uuid.New(),
		Name:      "account_sync",
		Label:     "Account Sync",
		Notation:  "plantuml",
		StepCount: 7,
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, bus.Publish(ctx, "diagram.rendered", RenderedFrom(r)))

	e, err := DecodeRendered(receive(t, got))
	require.NoError(t, err)
	assert.Equal(t, r.ID.String(), e.ID)
	assert.Equal(t, "plantuml", e.Notation)
	assert.Equal(t, 7, e.StepCount)
	assert.True(t, r.CreatedAt.Equal(e.CreatedAt))
}

func TestEventBus_PublishUnmarshalable(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	err := bus.Publish(context.Background(), "t", map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestNewEventBusFromConfig(t *testing.T) {
	for _, cfg := range []*config.EventConfig{nil, {}, {Driver: "memory"}} {
		bus, err := NewEventBusFromConfig(cfg)
		require.NoError(t, err)
		require.NotNil(t, bus)
		bus.Close()
	}

	_, err := NewEventBusFromConfig(&config.EventConfig{Driver: "nats"})
	assert.Error(t, err, "nats without url")

	_, err = NewEventBusFromConfig(&config.EventConfig{Driver: "kafka"})
	assert.Error(t, err)
}
