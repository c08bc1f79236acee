package notifiers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/achemlab/sgnssim/internal/notify"
)

func TestWebSocketNotifierIdentity(t *testing.T) {
	n := NewWebSocketNotifier("test-ws")
	defer n.Close()

	if n.ID() != "test-ws" {
		t.Errorf("ID() = %q, want %q", n.ID(), "test-ws")
	}
	if n.Type() != "websocket" {
		t.Errorf("Type() = %q, want %q", n.Type(), "websocket")
	}
}

func TestWebSocketNotifierGetUpgrader(t *testing.T) {
	n := NewWebSocketNotifier("test")
	defer n.Close()

	upgrader := n.GetUpgrader()
	if upgrader.ReadBufferSize == 0 || upgrader.WriteBufferSize == 0 {
		t.Error("expected non-zero buffer sizes on the upgrader")
	}
}

func TestWebSocketNotifierNotifyWithNoClientsDoesNotError(t *testing.T) {
	n := NewWebSocketNotifier("test")
	defer n.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	event := notify.NewPopulationSample(0, "env", "Environment", nil)
	if err := n.Notify(ctx, event); err != nil {
		t.Errorf("expected no error notifying with no registered clients, got %v", err)
	}
}

func TestWebSocketNotifierClose(t *testing.T) {
	n := NewWebSocketNotifier("test")
	if err := n.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestWebSocketNotifierBroadcastsToConnectedClients(t *testing.T) {
	n := NewWebSocketNotifier("broadcast")
	defer n.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := n.GetUpgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		n.RegisterClient(conn)
		defer n.UnregisterClient(conn)
		// Keep the handler alive while the test reads from the client side.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing test server: %v", err)
	}
	defer conn.Close()

	// Give the server handler a moment to register the connection before
	// broadcasting, since registration happens asynchronously on the
	// notifier's internal run loop.
	time.Sleep(50 * time.Millisecond)

	event := notify.NewPopulationSample(3.0, "env", "Environment", map[string]int64{"A": 9})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := n.Notify(ctx, event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast message: %v", err)
	}
	if !strings.Contains(string(data), `"A":9`) {
		t.Errorf("expected the broadcast message to carry the population sample, got %q", data)
	}
}
