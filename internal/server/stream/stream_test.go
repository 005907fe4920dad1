package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basekit-io/basekit/internal/server/models"
)

func TestHub_SubscribeReceivesOwnEvents(t *testing.T) {
	h := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx, "user-1")

	h.Publish(Updated(&models.User{ID: "user-1", Email: "a@b.c"}))

	select {
	case evt := <-ch:
		assert.Equal(t, EventUpdated, evt.Type)
		assert.Equal(t, "user-1", evt.UserID)
		require.NotNil(t, evt.Record)
		assert.Equal(t, "a@b.c", evt.Record.Email)
		assert.False(t, evt.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected an event, got none")
	}
}

func TestHub_EventsAreScopedToUser(t *testing.T) {
	h := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx, "user-1")

	h.Publish(Deleted("user-2"))

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event for another user: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnsubscribeOnContextCancel(t *testing.T) {
	h := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx, "user-1")

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "channel must be closed after ctx ends")

	// publishing after unsubscribe must not panic or block
	h.Publish(Deleted("user-1"))
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// never drained
	_ = h.Subscribe(ctx, "user-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.Publish(Deleted("user-1"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestHub_DeletedEventHasNoRecord(t *testing.T) {
	evt := Deleted("user-9")
	assert.Equal(t, EventDeleted, evt.Type)
	assert.Equal(t, "user-9", evt.UserID)
	assert.Nil(t, evt.Record)
}
