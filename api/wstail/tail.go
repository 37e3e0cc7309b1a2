package wstail

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"helix/domain/telemetry"
	"helix/service"
)

// Handler streams the newest records of the recent-call log over a
// websocket. Each tick pushes calls the client has not seen yet,
// oldest first, identified by capture timestamp.
type Handler struct {
	svc      *service.TelemetryService
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewHandler(svc *service.TelemetryService, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Handler{
		svc:      svc,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

type event struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	Status       int    `json:"status"`
	LatencyNanos int64  `json:"latency_nanos"`
	Bytes        int64  `json:"bytes"`
	Time         int64  `json:"time_unix_nano"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[wstail] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := time.NewTicker(h.interval)
	defer t.Stop()

	var lastSeen int64
	for {
		select {
		case <-done:
			return
		case <-t.C:
			batch := h.collectSince(lastSeen)
			if len(batch) == 0 {
				continue
			}
			lastSeen = batch[len(batch)-1].Time
			if err := conn.WriteJSON(batch); err != nil {
				return
			}
		}
	}
}

// collectSince returns calls newer than the given timestamp, oldest
// first so clients append in arrival order.
func (h *Handler) collectSince(since int64) []event {
	var newest []event
	h.svc.RecentCalls(func(c *telemetry.APICall) {
		if c.Time > since {
			newest = append(newest, event{
				Method:       c.Method,
				Path:         c.Path,
				Status:       c.Status,
				LatencyNanos: int64(c.Latency),
				Bytes:        c.Bytes,
				Time:         c.Time,
			})
		}
	})

	// Scan order is newest first; reverse for delivery.
	for i, j := 0, len(newest)-1; i < j; i, j = i+1, j-1 {
		newest[i], newest[j] = newest[j], newest[i]
	}
	return newest
}
