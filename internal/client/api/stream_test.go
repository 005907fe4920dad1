package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/basekit-io/basekit/internal/common"
)

func sseHandler(t *testing.T, frames []string, hold bool) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "retry: 3000\n\n")
		fl.Flush()

		for _, frame := range frames {
			fmt.Fprint(w, frame)
			fl.Flush()
		}
		if hold {
			<-r.Context().Done()
		}
	}
}

func recvEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-events:
		require.True(t, ok, "stream closed before event arrived")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func requireClosed(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case _, ok := <-events:
		require.False(t, ok, "expected closed channel")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to close")
	}
}

func TestWatch_DeliversEvents(t *testing.T) {
	frames := []string{
		"event: user.updated\ndata: {\"type\":\"updated\",\"user_id\":\"u1\",\"record\":{\"id\":\"u1\",\"is_active\":false},\"at\":\"2025-06-01T12:00:00Z\"}\n\n",
		": keepalive\n\n",
		"event: user.deleted\ndata: {\"type\":\"deleted\",\"user_id\":\"u1\",\"at\":\"2025-06-01T12:00:01Z\"}\n\n",
	}
	c := newTestClient(t, sseHandler(t, frames, false))

	events, closeStream, err := c.Watch(context.Background(), "u1")
	require.NoError(t, err)
	defer closeStream()

	first := recvEvent(t, events)
	require.Equal(t, EventUpdated, first.Type)
	require.Equal(t, "u1", first.UserID)
	require.NotNil(t, first.Record)
	require.False(t, first.Record.IsActive)

	second := recvEvent(t, events)
	require.Equal(t, EventDeleted, second.Type)
	require.Nil(t, second.Record)

	requireClosed(t, events)
}

func TestWatch_BearerInjected(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		sseHandler(t, nil, false)(w, r)
	}))
	c.SetToken("watch-token")

	events, closeStream, err := c.Watch(context.Background(), "u1")
	require.NoError(t, err)
	defer closeStream()

	requireClosed(t, events)
	require.Equal(t, "Bearer watch-token", gotAuth)
}

func TestWatch_ErrorStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
	}))

	_, _, err := c.Watch(context.Background(), "someone-else")
	require.ErrorIs(t, err, common.ErrorForbidden)
}

func TestWatch_CloseFuncEndsStream(t *testing.T) {
	c := newTestClient(t, sseHandler(t, nil, true))

	events, closeStream, err := c.Watch(context.Background(), "u1")
	require.NoError(t, err)

	closeStream()
	requireClosed(t, events)

	// Safe to call again.
	closeStream()
}

func TestWatch_ParentContextCancels(t *testing.T) {
	c := newTestClient(t, sseHandler(t, nil, true))

	ctx, cancel := context.WithCancel(context.Background())
	events, closeStream, err := c.Watch(ctx, "u1")
	require.NoError(t, err)
	defer closeStream()

	cancel()
	requireClosed(t, events)
}
