package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/achemlab/sgnssim/internal/notify"
)

func TestStartRun(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.StartRun(context.Background()); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/run" {
		t.Errorf("path = %q, want /run", gotPath)
	}
}

func TestStartRunReportsConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "a run is already in progress", http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.StartRun(context.Background()); err == nil {
		t.Fatal("expected an error when the server reports 409")
	}
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("path = %q, want /status", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"running":false,"results":[{"id":"r-0","run":0,"seed":42,"steps":100,"took":"1.5ms"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Running {
		t.Error("expected Running = false")
	}
	if len(status.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(status.Results))
	}
	if status.Results[0].Seed != 42 || status.Results[0].Steps != 100 {
		t.Errorf("unexpected result: %+v", status.Results[0])
	}
}

func TestStatusReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Status(context.Background()); err == nil {
		t.Fatal("expected an error on a 500 response")
	}
}

func TestStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	want := notify.NewPopulationSample(1.5, "env", "Environment", map[string]int64{"A": 3})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		data, _ := json.Marshal(want)
		_ = conn.WriteMessage(websocket.TextMessage, data)
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	httpURL := srv.URL
	c := New(httpURL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := c.Stream(ctx)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	select {
	case event, ok := <-events:
		if !ok {
			t.Fatal("events channel closed before delivering anything")
		}
		if event.CompartmentPath != "env" || event.Populations["A"] != 3 {
			t.Errorf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an event")
	}
}

func TestToWebSocketURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8090":  "ws://localhost:8090/ws",
		"https://example.com":    "wss://example.com/ws",
	}
	for in, want := range cases {
		got, err := toWebSocketURL(in, "ws")
		if err != nil {
			t.Fatalf("toWebSocketURL(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("toWebSocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}
