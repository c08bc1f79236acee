package sgns

import "math"

// Event is the scheduling handle embedded in every Stream. It records the
// stream's current slot in its parent Queue's heap and that Queue; queue is
// nil while the stream is not enqueued anywhere (index is then 0 for a
// stream never enqueued, -1 after a Dequeue).
type Event struct {
	index int
	queue *Queue
}

func (e *Event) ev() *Event { return e }

// IsEnqueued reports whether the owning stream currently occupies a slot in
// some Queue's heap.
func (e *Event) IsEnqueued() bool { return e.queue != nil }

// Queue returns the Queue the owning stream is currently enqueued in, or nil.
func (e *Event) Queue() *Queue { return e.queue }

// Stream is anything that can be scheduled in a Queue. It is a sealed
// interface: ev() is unexported, so only types declared in this package can
// satisfy it, which keeps the whole event-scheduling core in one package
// and avoids the import cycles a split into sub-packages would create.
type Stream interface {
	// Trigger fires the stream's next event: pop whatever work the stream
	// has pending at its current scheduled time and compute the next one.
	Trigger()
	// Update recomputes the stream's next scheduled time without firing,
	// used when something the stream depends on changed.
	Update()

	ev() *Event
}

type qEntry struct {
	time float64
	s    Stream
}

// UpdateList is the single work queue shared by a Simulation and every
// nested umbrella queue beneath it. A Stream whose propensity may have
// changed without itself firing registers here (EventStream.scheduleForUpdate
// in the source this is grounded on) instead of each nesting level keeping
// its own list — every EventStreamQueue constructor is handed the same
// underlying list its parent already holds.
type UpdateList struct {
	items []Stream
}

func NewUpdateList() *UpdateList { return &UpdateList{} }

func (u *UpdateList) push(s Stream) { u.items = append(u.items, s) }

// Drain removes and returns everything currently queued. Callers must keep
// draining until it returns empty, since Update() on one stream can enqueue
// more (e.g. an umbrella adjusting its own time after a sub-event changes).
func (u *UpdateList) Drain() []Stream {
	if len(u.items) == 0 {
		return nil
	}
	items := u.items
	u.items = nil
	return items
}

// Queue is an indexed binary min-heap over Stream next-event times, with a
// sentinel at index 0 holding -Inf so that bubbleUp never needs a bounds
// check against the root. Unlike container/heap, elements can be
// repositioned in place (Reposition) in O(log n) without a remove+reinsert,
// which the Next-Reaction-Method rescale requires: an in-flight event's
// time changes whenever a dependency fires, and it must not lose its slot.
type Queue struct {
	heap []qEntry

	baseTime float64
	onNewMin func()

	// updatedBaseTime, when set, overrides BaseTime() for callers that need
	// the queue's time projected through an enclosing umbrella's own rate.
	// A plain Queue has no enclosing umbrella, so it defaults to reading
	// baseTime directly; UmbrellaInstance installs its own closure here.
	updatedBaseTime func() float64

	updates *UpdateList
}

func emptyNewMin() {}

// NewQueue creates an empty top-level Queue with its own UpdateList.
func NewQueue() *Queue {
	return newQueueWithUpdates(NewUpdateList())
}

// newQueueWithUpdates creates a Queue that shares an existing UpdateList,
// used for nested umbrella queues which register update work on the same
// list as everything above them rather than keeping a level-local one.
func newQueueWithUpdates(updates *UpdateList) *Queue {
	q := &Queue{
		heap:     make([]qEntry, 1, 16),
		onNewMin: emptyNewMin,
		updates:  updates,
	}
	q.heap[0] = qEntry{time: math.Inf(-1), s: nil}
	return q
}

// Updates returns the shared UpdateList this queue registers work on, so a
// nested queue can be constructed sharing the same list.
func (q *Queue) Updates() *UpdateList { return q.updates }

// ScheduleForUpdate registers s to receive an Update() call the next time
// the owning Simulation drains its update list.
func (q *Queue) ScheduleForUpdate(s Stream) {
	if q.updates != nil {
		q.updates.push(s)
	}
}

// BaseTime returns the time this queue is anchored at — the time of the
// last event it dispatched, or the time it was initialized to.
func (q *Queue) BaseTime() float64 { return q.baseTime }

// SetBaseTime advances the queue's anchor time. Callers must never move it
// backwards.
func (q *Queue) SetBaseTime(t float64) { q.baseTime = t }

// UpdatedBaseTime returns the time to use when computing a new rate-based
// duration relative to this queue, which for a plain queue is just its own
// base time, but for the inner queue of an umbrella reaction reflects the
// umbrella's rescaled local clock.
func (q *Queue) UpdatedBaseTime() float64 {
	if q.updatedBaseTime != nil {
		return q.updatedBaseTime()
	}
	return q.baseTime
}

// SetOnNewMin installs the callback fired whenever slot 1 of the heap is
// touched by an Enqueue, Dequeue, or Reposition — not only when its
// occupant changes, but also when the root stream's own time is updated
// and it stays at the root. A reposition that leaves the root's occupant
// in place but moves it to a later time must still fire this: the caller
// (an umbrella re-seating itself in its parent queue, for instance) relies
// on it to notice the new time, not just a new occupant.
func (q *Queue) SetOnNewMin(fn func()) {
	if fn == nil {
		fn = emptyNewMin
	}
	q.onNewMin = fn
}

func (q *Queue) IsEmpty() bool { return len(q.heap) == 1 }

func (q *Queue) PeekTime() float64 {
	if q.IsEmpty() {
		return math.Inf(1)
	}
	return q.heap[1].time
}

func (q *Queue) PeekStream() Stream {
	if q.IsEmpty() {
		return nil
	}
	return q.heap[1].s
}

// Enqueue schedules s to fire at absolute time t. s must not already be
// enqueued anywhere.
func (q *Queue) Enqueue(s Stream, t float64) {
	e := s.ev()
	q.heap = append(q.heap, qEntry{time: t, s: s})
	idx := len(q.heap) - 1
	e.index = idx
	e.queue = q
	if q.bubbleUp(idx) {
		q.onNewMin()
	}
}

// Dequeue removes s from whatever queue it currently occupies.
func (q *Queue) Dequeue(s Stream) {
	e := s.ev()
	if e.queue != q {
		return
	}
	i := e.index
	last := len(q.heap) - 1

	q.swap(i, last)
	q.heap = q.heap[:last]
	e.index = -1
	e.queue = nil

	if q.IsEmpty() {
		q.onNewMin()
		return
	}
	if i <= last-1 && q.bubbleAround(i) {
		q.onNewMin()
	}
}

// Reposition changes the scheduled time of a stream already in this queue,
// re-seating it in the heap in O(log n). Which direction it bubbles is
// decided by the sign of the change, not by comparing to the parent: a
// decrease can only ever need to move up (every descendant already sorts
// later than the old, larger time), and an increase or no-op can only ever
// need to move down (or stay put) — mirroring the original's Event::enqueue.
func (q *Queue) Reposition(s Stream, newTime float64) {
	e := s.ev()
	i := e.index
	oldTime := q.heap[i].time
	q.heap[i].time = newTime

	var touchedRoot bool
	if newTime < oldTime {
		touchedRoot = q.bubbleUp(i)
	} else {
		touchedRoot = q.bubbleDown(i)
	}
	if touchedRoot {
		q.onNewMin()
	}
}

func (q *Queue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	if q.heap[i].s != nil {
		q.heap[i].s.ev().index = i
	}
	if q.heap[j].s != nil {
		q.heap[j].s.ev().index = j
	}
}

// bubbleUp moves the entry at i toward the root while its parent sorts
// later. Reports whether the entry ends up at the root (index 1) — the
// condition under which the original fires its new-min callback for an
// upward move.
func (q *Queue) bubbleUp(i int) bool {
	for i > 1 && q.heap[i/2].time > q.heap[i].time {
		q.swap(i, i/2)
		i /= 2
	}
	return i == 1
}

// bubbleDown moves the entry at i away from the root while a child sorts
// earlier. Reports whether i started at the root (index 1) — the
// condition under which the original fires its new-min callback for a
// downward move, regardless of where the entry ends up: the root's
// occupant necessarily changes (or its time does) whenever the root is
// the one being bubbled down.
func (q *Queue) bubbleDown(i int) bool {
	touchedRoot := i == 1
	n := len(q.heap) - 1
	for {
		left, right := 2*i, 2*i+1
		smallest := i
		if left <= n && q.heap[left].time < q.heap[smallest].time {
			smallest = left
		}
		if right <= n && q.heap[right].time < q.heap[smallest].time {
			smallest = right
		}
		if smallest == i {
			break
		}
		q.swap(i, smallest)
		i = smallest
	}
	return touchedRoot
}

// bubbleAround restores the heap property around i after its key changed
// to an unknown direction, deciding which way to bubble by comparing
// against the parent.
func (q *Queue) bubbleAround(i int) bool {
	if i >= len(q.heap) {
		return false
	}
	parent := i / 2
	if parent >= 1 && q.heap[parent].time > q.heap[i].time {
		return q.bubbleUp(i)
	}
	return q.bubbleDown(i)
}
