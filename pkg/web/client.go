package web

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// statusReadTimeout bounds the wait for the next status message.
const statusReadTimeout = 60 * time.Second

// WatchStatus connects to a scanner's /ws/status endpoint and calls fn for
// every snapshot received, starting with the replayed current one. It
// returns nil when fn returns false, ctx.Err() when ctx ends, and the
// connection error otherwise.
func WatchStatus(ctx context.Context, url string, fn func(scan.Snapshot) bool) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("web: dial %s: %w", url, err)
	}
	defer ws.Close()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	for {
		ws.SetReadDeadline(time.Now().Add(statusReadTimeout))
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("web: read status: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}

		var snap scan.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("web: decode status: %w", err)
		}
		if !fn(snap) {
			ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil
		}
	}
}
