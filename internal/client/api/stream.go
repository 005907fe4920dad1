package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// watchBuffer is the event channel capacity. The server already drops
// events to slow consumers, so a small buffer is enough to absorb
// bursts between reads.
const watchBuffer = 8

func (c *HTTPClient) Watch(ctx context.Context, userID string) (<-chan Event, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	path := c.baseURL + "/api/watch/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("error building watch request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("error opening watch stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := decodeError(resp)
		resp.Body.Close()
		cancel()
		return nil, nil, err
	}

	events := make(chan Event, watchBuffer)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		readEvents(ctx, resp.Body, events)
	}()

	return events, cancel, nil
}

// readEvents parses the SSE wire format: "data:" lines carry the JSON
// event, a blank line ends a frame, lines starting with ':' are
// keepalive comments. The event type is taken from the JSON payload, so
// "event:" lines need no handling of their own. Returns when the stream
// ends or ctx is canceled.
func readEvents(ctx context.Context, r io.Reader, events chan<- Event) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 16*1024), maxResponseBytes)

	var data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if data == "" {
				continue
			}
			var evt Event
			if err := json.Unmarshal([]byte(data), &evt); err == nil {
				select {
				case events <- evt:
				case <-ctx.Done():
					return
				}
			}
			data = ""
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}
