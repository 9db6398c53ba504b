package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// StreamableHTTPTransport writes server-sent events on one response.
type StreamableHTTPTransport struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	closed  bool
}

// NewStreamableHTTPTransport creates a new Streamable HTTP transport
func NewStreamableHTTPTransport(w http.ResponseWriter, f http.Flusher) *StreamableHTTPTransport {
	return &StreamableHTTPTransport{
		writer:  w,
		flusher: f,
	}
}

// SendSSE sends a message through SSE stream (for server-to-client communication)
func (t *StreamableHTTPTransport) SendSSE(event string, data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE data: %w", err)
	}

	sseMessage := fmt.Sprintf("event: %s\ndata: %s\n\n", event, string(dataJSON))
	if err := t.writeLocked(sseMessage); err != nil {
		return fmt.Errorf("failed to write SSE message: %w", err)
	}
	return nil
}

func (t *StreamableHTTPTransport) writeLocked(payload string) error {
	if _, err := t.writer.Write([]byte(payload)); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

// Close stops further writes.
func (t *StreamableHTTPTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// acceptsOnlyEventStream reports whether the client wants an SSE reply: it
// lists text/event-stream and no JSON media type.
func acceptsOnlyEventStream(acceptHeader string) bool {
	stream, jsonOK := false, false
	for _, part := range strings.Split(acceptHeader, ",") {
		mime := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch {
		case strings.EqualFold(mime, "text/event-stream"):
			stream = true
		case strings.EqualFold(mime, "application/json"), mime == "*/*", strings.EqualFold(mime, "application/*"):
			jsonOK = true
		}
	}
	return stream && !jsonOK
}
