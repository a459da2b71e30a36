package irqlock

import "corvus/defs"

// Blocker is the slice of the scheduler a wait queue needs: enough to
// park the current thread and to wake a specific one back up. The
// scheduler registers its implementation via SetScheduler during
// bootstrap, a one-time-initialized global acquired through an
// accessor, so this package never imports sched directly (sched in
// turn depends on irqlock for its own locking, and Go forbids the
// cycle).
type Blocker interface {
	Block()
	Deblock(pid defs.Pid_t, tid defs.Tid_t)
	CurrentIDs() (defs.Pid_t, defs.Tid_t)
}

var scheduler Blocker

// SetScheduler installs the scheduler a WaitQueue blocks against. Must
// be called once during bootstrap before any WaitQueue.Wait call.
func SetScheduler(b Blocker) {
	scheduler = b
}

type waiter struct {
	pid defs.Pid_t
	tid defs.Tid_t
}

// WaitQueue blocks threads until a caller-supplied predicate holds,
// and wakes them back up on notify. Adapted from original_source's
// wait_queue.rs: the predicate is rechecked under the queue's own lock
// immediately before enqueuing, closing the race where the condition
// becomes true between the caller's first check and the enqueue.
type WaitQueue struct {
	lock  Spinlock
	queue []waiter
}

// Wait blocks the calling thread until pred() returns true. pred may be
// called multiple times, including after every wake-up; it must be
// side-effect free to call repeatedly.
func (wq *WaitQueue) Wait(pred func() bool) {
	for {
		if pred() {
			return
		}

		pid, tid := scheduler.CurrentIDs()

		g := wq.lock.Lock()
		if pred() {
			g.Unlock()
			return
		}
		wq.queue = append(wq.queue, waiter{pid: pid, tid: tid})
		g.Unlock()

		scheduler.Block()
		// On wake, loop and recheck pred().
	}
}

// NotifyOne wakes exactly one waiter, if any, and reports whether
// anyone was woken.
func (wq *WaitQueue) NotifyOne() bool {
	g := wq.lock.Lock()
	if len(wq.queue) == 0 {
		g.Unlock()
		return false
	}
	w := wq.queue[0]
	wq.queue = wq.queue[1:]
	g.Unlock()

	scheduler.Deblock(w.pid, w.tid)
	return true
}

// NotifyAll wakes every thread currently waiting.
func (wq *WaitQueue) NotifyAll() {
	g := wq.lock.Lock()
	ws := wq.queue
	wq.queue = nil
	g.Unlock()

	for _, w := range ws {
		scheduler.Deblock(w.pid, w.tid)
	}
}
