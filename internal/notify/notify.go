// Package notify fans reaction-engine events out to external channels —
// webhooks, WebSocket clients, or anything else implementing Notifier —
// through a bounded queue and a small worker pool, with retry/backoff on
// delivery failure.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/achemlab/sgnssim/internal/logger"
)

// EventKind distinguishes the two record types the engine emits.
type EventKind string

const (
	// EventPopulationSample records a sampler snapshot of one compartment's
	// species populations at a point in simulated time.
	EventPopulationSample EventKind = "population_sample"
	// EventReactionFired records a single reaction instance firing.
	EventReactionFired EventKind = "reaction_fired"
)

// Event is what gets handed to every registered Notifier. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind EventKind `json:"kind"`

	SimTime   float64 `json:"sim_time"`
	WallClock int64   `json:"wall_clock"`

	// Population-sample fields.
	CompartmentPath string           `json:"compartment_path,omitempty"`
	CompartmentType string           `json:"compartment_type,omitempty"`
	Populations     map[string]int64 `json:"populations,omitempty"`

	// Reaction-fired fields.
	ReactionID   int      `json:"reaction_id,omitempty"`
	ReactionName string   `json:"reaction_name,omitempty"`
	Reactants    []string `json:"reactants,omitempty"`
	Products     []string `json:"products,omitempty"`
}

// JSON returns the event as JSON bytes.
func (e Event) JSON() ([]byte, error) { return json.Marshal(e) }

// NewPopulationSample builds a population-sample event.
func NewPopulationSample(simTime float64, compartmentPath, compartmentType string, populations map[string]int64) Event {
	return Event{
		Kind:            EventPopulationSample,
		SimTime:         simTime,
		WallClock:       time.Now().Unix(),
		CompartmentPath: compartmentPath,
		CompartmentType: compartmentType,
		Populations:     populations,
	}
}

// NewReactionFired builds a reaction-fired event.
func NewReactionFired(simTime float64, reactionID int, reactionName string, reactants, products []string) Event {
	return Event{
		Kind:         EventReactionFired,
		SimTime:      simTime,
		WallClock:    time.Now().Unix(),
		ReactionID:   reactionID,
		ReactionName: reactionName,
		Reactants:    reactants,
		Products:     products,
	}
}

// Notifier is the interface every notification channel implements.
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, event Event) error
	Close() error
}

type job struct {
	event       Event
	notifierIDs []string
}

// Manager routes events to registered Notifiers asynchronously, via a
// bounded job queue drained by a fixed worker pool. Enqueue never blocks:
// a full queue drops the job and logs it.
type Manager struct {
	log logger.Logger

	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan job
	closed    bool
	wg        sync.WaitGroup
}

// NewManager creates a notification manager with a single worker, logging
// through log (logger.NewNoOpLogger() if nil).
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	m := &Manager{
		log:       log,
		notifiers: make(map[string]Notifier),
		jobs:      make(chan job, 1024),
	}
	m.startWorkers(1)
	return m
}

// Register adds a notifier under its own ID.
func (m *Manager) Register(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notify: notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return fmt.Errorf("notify: notifier ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.notifiers[id]; exists {
		return fmt.Errorf("notify: notifier %q already registered", id)
	}
	m.notifiers[id] = n
	return nil
}

// Unregister removes and closes a notifier.
func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	n, exists := m.notifiers[id]
	m.mu.Unlock()
	if !exists {
		return fmt.Errorf("notify: notifier %q not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("notify: closing %q: %w", id, err)
	}
	m.mu.Lock()
	delete(m.notifiers, id)
	m.mu.Unlock()
	return nil
}

// Get retrieves a notifier by ID.
func (m *Manager) Get(id string) (Notifier, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifiers[id]
	return n, ok
}

// IDs lists every registered notifier's ID.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.notifiers))
	for id := range m.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Enqueue schedules event for asynchronous delivery to notifierIDs.
// Non-blocking: drops and logs if the queue is full.
func (m *Manager) Enqueue(event Event, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return
	}

	select {
	case m.jobs <- job{event: event, notifierIDs: notifierIDs}:
	default:
		m.log.Warnf("notify: queue full, dropping %s event", event.Kind)
	}
}

func (m *Manager) startWorkers(n int) {
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go m.worker()
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for j := range m.jobs {
		m.dispatch(j)
	}
}

func (m *Manager) dispatch(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, id := range j.notifierIDs {
		m.notifyWithRetry(ctx, id, j.event)
	}
}

func (m *Manager) notifyWithRetry(ctx context.Context, notifierID string, event Event) {
	m.mu.RLock()
	n, ok := m.notifiers[notifierID]
	m.mu.RUnlock()
	if !ok {
		m.log.Errorf("notify: notifier %q not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := n.Notify(ctx, event)
		if err == nil {
			return
		}
		m.log.Warnf("notify: %q attempt %d failed: %v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			m.log.Errorf("notify: %q gave up after %d attempts", notifierID, maxRetries+1)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Close shuts down the worker pool and closes every registered notifier.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.jobs)
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for id, n := range m.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %q: %w", id, err))
		}
	}
	m.notifiers = make(map[string]Notifier)
	if len(errs) > 0 {
		return fmt.Errorf("notify: errors closing notifiers: %v", errs)
	}
	return nil
}
