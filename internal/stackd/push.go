package stackd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/restackd/restack/internal/logging"
)

// DeltaHandler consumes a per-stack redeploy status delta.
type DeltaHandler func(id string, redeploying bool)

const (
	handshakeTimeout = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	writeWait        = 10 * time.Second
	maxEventSize     = 65536

	// A session shorter than this is treated as a failed connection for
	// backoff purposes; longer sessions reset the backoff.
	healthySession = 30 * time.Second
)

// Listener consumes the daemon's /api/events WebSocket stream and forwards
// stack status deltas to a handler. Connection lifecycle (reconnect, backoff,
// keepalive) is handled here; consumers only see the logical delta events.
type Listener struct {
	wsURL string
}

// NewListener builds a Listener for the given apiBind host:port value.
func NewListener(apiBind string) (*Listener, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	default:
		base.Scheme = "ws"
	}
	base.Path = "/api/events"
	return &Listener{wsURL: base.String()}, nil
}

// Run connects to the event stream and dispatches deltas until the context is
// cancelled, reconnecting with exponential backoff after failures.
func (l *Listener) Run(ctx context.Context, handler DeltaHandler) error {
	log := logging.WithComponent("push")

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.Reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		started := time.Now()
		err := l.runOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if time.Since(started) >= healthySession {
			bo.Reset()
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			return fmt.Errorf("event stream gave up: %w", err)
		}
		log.Warn("event stream disconnected", "error", err, "retry_in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// runOnce executes a single connection lifecycle: dial, keepalive, read loop.
func (l *Listener) runOnce(ctx context.Context, handler DeltaHandler) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, l.wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed: status=%d, err=%w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	logging.WithComponent("push").Debug("event stream connected", "url", l.wsURL)

	// Ping loop keeps the read deadline alive and tears the connection down
	// when the context ends, which unblocks ReadMessage below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				deadline := time.Now().Add(writeWait)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
				_ = conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(maxEventSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		var event StatusEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue // Skip malformed frames
		}
		if event.Type != EventStackStatus || event.ID == "" {
			continue
		}
		handler(event.ID, event.Redeploying)
	}
}

// URL reports the resolved WebSocket endpoint.
func (l *Listener) URL() string {
	return l.wsURL
}
