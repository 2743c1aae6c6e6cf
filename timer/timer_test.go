package timer

import (
	"container/heap"
	"testing"
	"time"
)

// newIdleManager builds a manager without the background loop so tests
// can drive fireDue deterministically.
func newIdleManager() *Manager {
	m := &Manager{
		queue:      make(TimerQueue, 0),
		nextId:     1,
		resolution: 100 * time.Millisecond,
		stopChan:   make(chan struct{}),
	}
	heap.Init(&m.queue)
	return m
}

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Callback never fired")
	}
}

func TestManager_OneShotFires(t *testing.T) {
	m := newIdleManager()
	fired := make(chan struct{}, 1)

	m.AddTimer(0, 0, func() { fired <- struct{}{} })
	m.fireDue(time.Now().Add(time.Millisecond))

	waitFor(t, fired)

	if m.queue.Len() != 0 {
		t.Errorf("One-shot task should leave the queue, %d remain", m.queue.Len())
	}
}

func TestManager_NotDueDoesNotFire(t *testing.T) {
	m := newIdleManager()
	fired := make(chan struct{}, 1)

	m.AddTimer(time.Hour, 0, func() { fired <- struct{}{} })
	m.fireDue(time.Now())

	select {
	case <-fired:
		t.Fatal("Task fired an hour early")
	case <-time.After(50 * time.Millisecond):
	}
	if m.queue.Len() != 1 {
		t.Errorf("Pending task should stay queued, got %d", m.queue.Len())
	}
}

func TestManager_RepeatingTaskRequeues(t *testing.T) {
	m := newIdleManager()
	fired := make(chan struct{}, 2)

	m.AddTimer(0, time.Second, func() { fired <- struct{}{} })

	m.fireDue(time.Now().Add(time.Millisecond))
	waitFor(t, fired)
	if m.queue.Len() != 1 {
		t.Fatal("Repeating task should re-queue after firing")
	}

	m.fireDue(time.Now().Add(2 * time.Second))
	waitFor(t, fired)
}

func TestManager_RemoveQueuedTask(t *testing.T) {
	m := newIdleManager()
	fired := make(chan struct{}, 1)

	id := m.AddTimer(0, 0, func() { fired <- struct{}{} })
	m.RemoveTimer(id)
	m.fireDue(time.Now().Add(time.Millisecond))

	select {
	case <-fired:
		t.Fatal("Removed task must not fire")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_RemoveInFlightRepeatingTask(t *testing.T) {
	m := newIdleManager()
	fired := make(chan struct{}, 2)

	id := m.AddTimer(0, time.Second, func() { fired <- struct{}{} })
	m.fireDue(time.Now().Add(time.Millisecond))
	waitFor(t, fired)

	// The task is back in the queue; removing it now must stop the cycle.
	m.RemoveTimer(id)
	m.fireDue(time.Now().Add(2 * time.Second))

	select {
	case <-fired:
		t.Fatal("Removed repeating task must not fire again")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_FiresInDeadlineOrder(t *testing.T) {
	m := newIdleManager()
	order := make(chan int, 3)

	now := time.Now()
	m.AddTimer(3*time.Millisecond, 0, func() { order <- 3 })
	m.AddTimer(1*time.Millisecond, 0, func() { order <- 1 })
	m.AddTimer(2*time.Millisecond, 0, func() { order <- 2 })

	// Fire one deadline at a time so goroutine launch order is observable.
	for i := 1; i <= 3; i++ {
		m.fireDue(now.Add(time.Duration(i)*time.Millisecond + time.Microsecond))
		select {
		case got := <-order:
			if got != i {
				t.Fatalf("Expected task %d to fire, got %d", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("Task %d never fired", i)
		}
	}
}
