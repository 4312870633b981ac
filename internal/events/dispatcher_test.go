package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishInvokesAllSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var calls []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventStatusChecked, func(context.Context, Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "JB-20250101-001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:JB-20250101-001", "second:JB-20250101-001"}, calls)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	reached := false
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("handler down")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.True(t, reached)
}
