package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/achemlab/sgnssim/internal/notify"
)

func TestWebhookNotifierIdentity(t *testing.T) {
	n := NewWebhookNotifier("test-webhook", "http://localhost:9999/webhook")
	if n.ID() != "test-webhook" {
		t.Errorf("ID() = %q, want %q", n.ID(), "test-webhook")
	}
	if n.Type() != "webhook" {
		t.Errorf("Type() = %q, want %q", n.Type(), "webhook")
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close() should not error for a webhook notifier, got %v", err)
	}
}

func TestWebhookNotifierPostsEventJSON(t *testing.T) {
	var gotMethod, gotContentType string
	var gotEvent notify.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotEvent)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("webhook", srv.URL)
	event := notify.NewPopulationSample(1.0, "env", "Environment", map[string]int64{"A": 5})
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotEvent.CompartmentPath != "env" || gotEvent.Populations["A"] != 5 {
		t.Errorf("unexpected decoded event: %+v", gotEvent)
	}
}

func TestWebhookNotifierSendsCustomHeaders(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("webhook", srv.URL)
	n.SetHeader("X-Api-Key", "secret")
	if err := n.Notify(context.Background(), notify.NewReactionFired(0, 1, "decay", nil, nil)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotHeader != "secret" {
		t.Errorf("X-Api-Key header = %q, want %q", gotHeader, "secret")
	}
}

func TestWebhookNotifierReportsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("webhook", srv.URL)
	if err := n.Notify(context.Background(), notify.NewPopulationSample(0, "env", "Environment", nil)); err == nil {
		t.Fatal("expected an error when the webhook endpoint returns a 500")
	}
}

func TestWebhookNotifierReportsConnectionFailure(t *testing.T) {
	n := NewWebhookNotifier("webhook", "http://127.0.0.1:1/unreachable")
	if err := n.Notify(context.Background(), notify.NewPopulationSample(0, "env", "Environment", nil)); err == nil {
		t.Fatal("expected an error when the webhook endpoint is unreachable")
	}
}
