package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Event stream names
const (
	EventCountdown     = "countdown"
	EventUnlocked      = "unlocked"
	EventNotifications = "notifications"
	EventNotifyError   = "notifications_error"
	EventExpired       = "expired"
)

// heartbeatInterval keeps idle proxies from closing the stream
const heartbeatInterval = 25 * time.Second

type sseEvent struct {
	name string
	data any
}

// sseStream writes text/event-stream frames
type sseStream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	s := &sseStream{w: w, rc: http.NewResponseController(w)}
	w.WriteHeader(http.StatusOK)
	if err := s.rc.Flush(); err != nil {
		return nil, fmt.Errorf("event stream unsupported: %w", err)
	}
	return s, nil
}

func (s *sseStream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *sseStream) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.rc.Flush()
}
