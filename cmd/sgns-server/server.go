package main

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/achemlab/sgnssim/internal/batch"
	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/logger"
	"github.com/achemlab/sgnssim/internal/notify"
	"github.com/achemlab/sgnssim/internal/notify/notifiers"
	"github.com/achemlab/sgnssim/internal/sample"
	"github.com/achemlab/sgnssim/internal/sgns"
)

// Server runs one model's replicates and streams each produced population
// sample to connected WebSocket clients, reusing the same
// NotificationManager retry/backoff worker design the teacher's
// notifications.go uses for molecule-change events, pointed at sample
// records instead.
type Server struct {
	model   *config.Model
	envType string
	cfg     ServerConfig

	notifyMgr *notify.Manager
	ws        *notifiers.WebSocketNotifier
	log       logger.Logger

	mu          sync.RWMutex
	running     bool
	lastResults []batch.Result
	lastErr     error
}

// NewServer creates a server around an already-built model.
func NewServer(model *config.Model, envType string, cfg ServerConfig, log logger.Logger) *Server {
	mgr := notify.NewManager(log)
	ws := notifiers.NewWebSocketNotifier("dashboard")
	_ = mgr.Register(ws)

	return &Server{
		model:     model,
		envType:   envType,
		cfg:       cfg,
		notifyMgr: mgr,
		ws:        ws,
		log:       log,
	}
}

// Close releases the notification manager and every registered notifier.
func (s *Server) Close() error { return s.notifyMgr.Close() }

// StartRun launches a batch run in the background if one isn't already in
// progress. Returns false if a run was already running.
func (s *Server) StartRun() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.running = true
	s.lastErr = nil
	s.mu.Unlock()

	go s.runBatch()
	return true
}

func (s *Server) runBatch() {
	target := notify.NewSampleTarget(s.notifyMgr, sample.NewStdoutTarget())
	sampler := sample.NewSampler(target)

	runner := batch.NewRunner(s.model, s.envType, time.Now().UnixNano(), nil)
	runner.Run = func(run int, sim *sgns.Simulation, env *sgns.HierCompartment) error {
		sim.SetTime(0)
		for t := 0.0; t <= s.cfg.StopTime; t += s.cfg.Interval {
			sim.RunUntil(t)
			if err := sampler.SampleState(sim.Time(), env); err != nil {
				return fmt.Errorf("replicate %d: %w", run, err)
			}
		}
		return nil
	}

	results, err := runner.RunAll(s.cfg.BatchCount)

	s.mu.Lock()
	s.running = false
	s.lastResults = results
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Errorf("batch run failed: %v", err)
	} else {
		s.log.Infof("batch run finished: %d replicates", len(results))
	}
}

// Status reports whether a run is in progress and the last run's results.
func (s *Server) Status() (running bool, results []batch.Result, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running, s.lastResults, s.lastErr
}

// handleWebSocket upgrades to a WebSocket connection and streams every
// population-sample event produced by the running (or next) batch run.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.ws.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	s.ws.RegisterClient(conn)

	go func() {
		defer s.ws.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
