package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/basekit-io/basekit/internal/server/stream"
)

const keepaliveInterval = 25 * time.Second

// userEventPayload is the SSE data frame. Record is present on updates
// and absent on deletes.
type userEventPayload struct {
	Type   string       `json:"type"`
	UserID string       `json:"user_id"`
	Record *userPayload `json:"record,omitempty"`
	At     time.Time    `json:"at"`
}

// handleWatchUser streams change events for one user as Server-Sent
// Events until the client disconnects.
func (a *API) handleWatchUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.requireSelfOrAdmin(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternal, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events := a.feed.Subscribe(r.Context(), id)

	// Reconnect hint for EventSource-style clients.
	_, _ = w.Write([]byte("retry: 3000\n\n"))
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-events:
			if !open {
				return
			}
			a.writeUserEvent(w, flusher, evt)
		case <-keepalive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (a *API) writeUserEvent(w http.ResponseWriter, flusher http.Flusher, evt stream.Event) {
	payload := userEventPayload{
		Type:   evt.Type,
		UserID: evt.UserID,
		At:     evt.At,
	}
	if evt.Record != nil {
		p := toUserPayload(evt.Record)
		payload.Record = &p
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	_, _ = w.Write([]byte("event: user." + evt.Type + "\n"))
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
	flusher.Flush()
}
