package sgns

import "testing"

// fakeStream is a minimal Stream for exercising Queue in isolation, without
// pulling in reaction/compartment machinery.
type fakeStream struct {
	Event
	triggered int
	updated   int
}

func (f *fakeStream) Trigger() { f.triggered++ }
func (f *fakeStream) Update()  { f.updated++ }

func TestQueueOrdersByTime(t *testing.T) {
	q := NewQueue()
	a := &fakeStream{}
	b := &fakeStream{}
	c := &fakeStream{}

	q.Enqueue(a, 5)
	q.Enqueue(b, 1)
	q.Enqueue(c, 3)

	if q.PeekTime() != 1 || q.PeekStream() != b {
		t.Fatalf("expected b (t=1) at the root, got t=%v", q.PeekTime())
	}

	q.Dequeue(b)
	if q.PeekTime() != 3 || q.PeekStream() != c {
		t.Fatalf("expected c (t=3) at the root after removing b, got t=%v", q.PeekTime())
	}

	q.Dequeue(c)
	if q.PeekTime() != 5 || q.PeekStream() != a {
		t.Fatalf("expected a (t=5) at the root after removing c, got t=%v", q.PeekTime())
	}
}

func TestQueueIsEmpty(t *testing.T) {
	q := NewQueue()
	if !q.IsEmpty() {
		t.Fatal("a fresh queue should be empty")
	}
	a := &fakeStream{}
	q.Enqueue(a, 10)
	if q.IsEmpty() {
		t.Fatal("queue with one entry should not be empty")
	}
	q.Dequeue(a)
	if !q.IsEmpty() {
		t.Fatal("queue should be empty again after dequeuing its only entry")
	}
}

func TestQueueRepositionReseatsInHeap(t *testing.T) {
	q := NewQueue()
	a := &fakeStream{}
	b := &fakeStream{}
	q.Enqueue(a, 1)
	q.Enqueue(b, 2)

	q.Reposition(a, 10)
	if q.PeekStream() != b || q.PeekTime() != 2 {
		t.Fatalf("expected b to become the root after a was repositioned later, got %v at t=%v", q.PeekStream(), q.PeekTime())
	}

	q.Reposition(b, 0.5)
	if q.PeekStream() != b || q.PeekTime() != 0.5 {
		t.Fatalf("expected b to stay root with its own new earlier time, got %v at t=%v", q.PeekStream(), q.PeekTime())
	}
}

func TestQueueOnNewMinFiresWheneverSlotOneIsTouched(t *testing.T) {
	q := NewQueue()
	calls := 0
	q.SetOnNewMin(func() { calls++ })

	a := &fakeStream{}
	b := &fakeStream{}
	q.Enqueue(a, 5)  // new root: a
	q.Enqueue(b, 10) // root unchanged, b never touches slot 1
	if calls != 1 {
		t.Fatalf("expected 1 onNewMin call, got %d", calls)
	}

	q.Reposition(b, 1) // new root: b
	if calls != 2 {
		t.Fatalf("expected 2 onNewMin calls after repositioning b ahead of a, got %d", calls)
	}

	q.Reposition(b, 2) // b stays root, but its own time moved later
	if calls != 3 {
		t.Fatalf("expected 3 onNewMin calls after repositioning the root to a later time without dislodging it, got %d", calls)
	}
	if q.PeekStream() != b || q.PeekTime() != 2 {
		t.Fatalf("expected b to remain root at t=2, got %v at t=%v", q.PeekStream(), q.PeekTime())
	}

	q.Dequeue(b) // root reverts to a
	if calls != 4 {
		t.Fatalf("expected 4 onNewMin calls after removing the root, got %d", calls)
	}

	q.Reposition(a, 8) // a stays root (queue has only one entry) at a later time
	if calls != 5 {
		t.Fatalf("expected 5 onNewMin calls after repositioning the sole entry to a later time, got %d", calls)
	}
}

func TestQueueScheduleForUpdateSharesUpdateList(t *testing.T) {
	q := NewQueue()
	nested := newQueueWithUpdates(q.Updates())

	s := &fakeStream{}
	nested.ScheduleForUpdate(s)

	pending := q.Updates().Drain()
	if len(pending) != 1 || pending[0] != s {
		t.Fatalf("expected the nested queue's update to surface on the shared list, got %v", pending)
	}
	if more := q.Updates().Drain(); more != nil {
		t.Fatalf("expected the update list to be empty after draining, got %v", more)
	}
}

func TestQueueUpdatedBaseTimeDefaultsToBaseTime(t *testing.T) {
	q := NewQueue()
	q.SetBaseTime(42)
	if q.UpdatedBaseTime() != 42 {
		t.Fatalf("expected UpdatedBaseTime to mirror BaseTime by default, got %v", q.UpdatedBaseTime())
	}
}
