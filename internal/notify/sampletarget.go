package notify

import "github.com/achemlab/sgnssim/internal/sample"

// SampleTarget wraps a sample.Target, turning every compartment record it
// sees into a population-sample Event enqueued on a Manager — letting a
// sampler feed both a file (or stdout) and a live dashboard without the
// engine or the sampler knowing notifications exist. It infers each
// compartment's chemical names from the header fields sample.Sampler
// writes on a compartment's first sample, then reconstructs a name->value
// map from every subsequent sample's raw WriteFloat64/WriteInt64 calls.
type SampleTarget struct {
	mgr        *Manager
	underlying sample.Target

	// headers caches each compartment path's chemical field names (in
	// declaration order, "time" excluded), captured the one time a
	// sample.Sampler writes them.
	headers map[string][]string

	curPath       string
	curWritingHdr bool
	curHeaderBuf  []string
	curFieldIdx   int

	pendingPath    string
	pendingHasData bool
	pendingSimTime float64
	pendingValues  map[string]int64
}

// NewSampleTarget creates a SampleTarget forwarding every write to
// underlying unchanged, in addition to enqueuing an Event per compartment
// record on mgr.
func NewSampleTarget(mgr *Manager, underlying sample.Target) *SampleTarget {
	return &SampleTarget{mgr: mgr, underlying: underlying, headers: make(map[string][]string)}
}

func (t *SampleTarget) flushPending() {
	if !t.pendingHasData {
		return
	}
	event := NewPopulationSample(t.pendingSimTime, t.pendingPath, t.pendingPath, t.pendingValues)
	t.mgr.Enqueue(event, t.mgr.IDs())
	t.pendingHasData = false
}

func (t *SampleTarget) BeginCompartment(path string, instantiationIndex int) (bool, error) {
	t.flushPending()

	first, err := t.underlying.BeginCompartment(path, instantiationIndex)
	if err != nil {
		return first, err
	}

	t.curPath = path
	t.curWritingHdr = first
	t.curHeaderBuf = nil
	t.curFieldIdx = 0
	t.pendingPath = path
	t.pendingValues = make(map[string]int64)
	t.pendingHasData = false
	return first, nil
}

func (t *SampleTarget) WriteHeaderField(title string) error {
	if t.curWritingHdr && title != "time" {
		t.curHeaderBuf = append(t.curHeaderBuf, title)
	}
	return t.underlying.WriteHeaderField(title)
}

// WriteFloat64 is only ever called once per compartment record, for the
// sample's time value, which doubles as the signal that header-writing (if
// any) for this compartment just ended.
func (t *SampleTarget) WriteFloat64(v float64) error {
	if t.curWritingHdr {
		t.headers[t.curPath] = t.curHeaderBuf
		t.curWritingHdr = false
	}
	t.pendingSimTime = v
	t.pendingHasData = true
	return t.underlying.WriteFloat64(v)
}

func (t *SampleTarget) WriteInt64(v int64) error {
	if names := t.headers[t.curPath]; t.curFieldIdx < len(names) {
		t.pendingValues[names[t.curFieldIdx]] = v
	}
	t.curFieldIdx++
	return t.underlying.WriteInt64(v)
}

func (t *SampleTarget) EndSample() error {
	t.flushPending()
	return t.underlying.EndSample()
}
