package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/logger"
)

func decayModelConfig() config.ModelConfig {
	return config.ModelConfig{
		Name:      "decay",
		Chemicals: []config.ChemicalConfig{{Name: "A"}},
		CompartmentTypes: []config.CompartmentTypeConfig{
			{
				Name:      "env",
				Chemicals: []string{"A"},
				Reactions: []config.ReactionConfig{
					{
						ID:        "decay",
						C:         1.0,
						Reactants: []config.ReactantConfig{{Species: "A", Amount: 1}},
					},
				},
			},
		},
		Init: []config.CommandConfig{
			{Kind: "select_env"},
			{
				Kind:         "set_populations",
				Chemical:     "A",
				Distribution: &config.DistributionConfig{Kind: "delta", C: 20},
			},
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := decayModelConfig()
	model, err := config.BuildModelFromConfig(cfg)
	if err != nil {
		t.Fatalf("BuildModelFromConfig: %v", err)
	}
	srv := NewServer(model, "env", ServerConfig{BatchCount: 1, StopTime: 5, Interval: 1}, logger.NewNoOpLogger())
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestRootTypeName(t *testing.T) {
	cfg := decayModelConfig()
	name, err := rootTypeName(cfg)
	if err != nil {
		t.Fatalf("rootTypeName: %v", err)
	}
	if name != "env" {
		t.Errorf("got %q, want %q", name, "env")
	}
}

func TestRootTypeNameRejectsMissingRoot(t *testing.T) {
	cfg := decayModelConfig()
	cfg.CompartmentTypes[0].Parent = "something"
	if _, err := rootTypeName(cfg); err == nil {
		t.Fatal("expected an error when no compartment type has an empty parent")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.handleHealth(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStartRunAndStatus(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	srv.handleStartRun(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	// Poll until the batch finishes and check that it produced one result.
	// Rejection of a second concurrent start is covered by
	// TestStartRunRejectsWhileRunning.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		running, results, _ := srv.Status()
		if !running && results != nil {
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("batch run never completed")
}

func TestStartRunRejectsWhileRunning(t *testing.T) {
	srv := newTestServer(t)
	if !srv.StartRun() {
		t.Fatal("expected the first StartRun to succeed")
	}
	if srv.StartRun() {
		t.Fatal("expected a second concurrent StartRun to be rejected")
	}
}
