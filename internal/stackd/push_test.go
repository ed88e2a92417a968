package stackd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestNewListener_URL(t *testing.T) {
	tests := []struct {
		name string
		bind string
		want string
	}{
		{"host port", "10.0.0.5:7466", "ws://10.0.0.5:7466/api/events"},
		{"http scheme", "http://10.0.0.5:7466", "ws://10.0.0.5:7466/api/events"},
		{"https becomes wss", "https://stackd.local", "wss://stackd.local/api/events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewListener(tt.bind)
			if err != nil {
				t.Fatalf("NewListener returned error: %v", err)
			}
			if got := l.URL(); got != tt.want {
				t.Fatalf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListener_DispatchesDeltas(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := []string{
		`{"type":"stack_status","id":"1","redeploying":true}`,
		`not json`,
		`{"type":"other","id":"2","redeploying":true}`,
		`{"type":"stack_status","id":"","redeploying":true}`,
		`{"type":"stack_status","id":"1","redeploying":false}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	}))
	defer srv.Close()

	l, err := NewListener(srv.URL)
	if err != nil {
		t.Fatalf("NewListener: %v", err)
	}

	type delta struct {
		id          string
		redeploying bool
	}
	var got []delta
	err = l.runOnce(context.Background(), func(id string, redeploying bool) {
		got = append(got, delta{id, redeploying})
	})
	if err == nil {
		t.Fatal("runOnce should return an error once the server closes the stream")
	}

	// Malformed, wrong-type, and id-less frames are skipped.
	want := []delta{{"1", true}, {"1", false}}
	if len(got) != len(want) {
		t.Fatalf("deltas = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("deltas = %v, want %v", got, want)
		}
	}
}

func TestListener_RunStopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	l, err := NewListener(srv.URL)
	if err != nil {
		t.Fatalf("NewListener: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx, func(string, bool) {})
	}()

	// Give the dial a moment, then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
