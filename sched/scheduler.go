package sched

import (
	"corvus/defs"
	"corvus/irqlock"
)

type sleeper struct {
	t    *Thread
	wake int64
}

// Scheduler is the single-CPU cooperative nucleus: a FIFO ready queue,
// a sleep list checked once per tick, and a join-waiter map. All of its
// state is private to its own IRQ-save lock, per the "scheduler state
// is protected by an IRQ-save spinlock" policy; nothing here is safe to
// touch without holding it.
type Scheduler struct {
	lock irqlock.Spinlock

	readyHead, readyTail *Thread
	sleeping             []sleeper
	joinWaiters          map[defs.Tid_t][]*Thread
	byTid                map[defs.Tid_t]*Thread

	systimeMs func() int64
}

var curThread *Thread

func current() *Thread {
	return curThread
}

// rsp0Setter lets the bootstrap bind context switches to the TSS:
// switchTo calls it with the incoming thread's kernel stack top before
// every switch, the same one-time wiring irqlock.SetScheduler uses to
// break the sched/irqlock import cycle. Single-CPU scope only — a
// second CPU would need its own TSS and its own hook.
var rsp0Setter func(uintptr)

// SetRSP0Setter installs the function switchTo calls on every context
// switch. Must be called once during bootstrap, before the first
// switch, or RSP0 is simply never updated.
func SetRSP0Setter(f func(uintptr)) {
	rsp0Setter = f
}

// Current returns the thread presently running on this CPU.
func Current() *Thread {
	return curThread
}

// NewScheduler creates an empty scheduler. systimeMs supplies the
// monotonic clock sleep() measures against; the bootstrap wires it to
// the same time source the syscall gate's systime_ms call reads.
func NewScheduler(systimeMs func() int64) *Scheduler {
	s := &Scheduler{
		joinWaiters: make(map[defs.Tid_t][]*Thread),
		byTid:       make(map[defs.Tid_t]*Thread),
		systimeMs:   systimeMs,
	}
	irqlock.SetScheduler(s)
	return s
}

// Spawn creates a new thread belonging to proc running entry, and
// readies it.
func (s *Scheduler) Spawn(proc *Process, entry func()) *Thread {
	t := NewThread(proc, entry)
	proc.addThread(t)

	s.lock.Lock()
	s.byTid[t.ID] = t
	s.lock.Unlock()

	s.Ready(t)
	return t
}

// Ready appends t to the tail of the ready queue. Safe to call from
// IRQ context.
func (s *Scheduler) Ready(t *Thread) {
	g := s.lock.Lock()
	t.state = Ready
	t.next = nil
	if s.readyTail == nil {
		s.readyHead, s.readyTail = t, t
	} else {
		s.readyTail.next = t
		s.readyTail = t
	}
	g.Unlock()
}

// popReadyLocked removes and returns the head of the ready queue, or
// nil if it's empty. Must be called with s.lock held.
func (s *Scheduler) popReadyLocked() *Thread {
	t := s.readyHead
	if t == nil {
		return nil
	}
	s.readyHead = t.next
	if s.readyHead == nil {
		s.readyTail = nil
	}
	t.next = nil
	return t
}

// Start performs the very first switch of the whole kernel: there is
// no prior thread to save, so it loads first's saved state directly
// and never returns.
func (s *Scheduler) Start(first *Thread) {
	curThread = first
	first.state = Running
	if rsp0Setter != nil {
		rsp0Setter(first.kernelStackTop())
	}
	threadStart(first.savedRSP)
}

// Block removes the calling thread from the running state without
// enqueuing it anywhere, then switches to the next runnable thread. The
// caller must already have recorded this thread on whatever wake list
// will eventually make it ready again (a wait queue, the sleep list,
// or a join-waiter list) before calling Block — otherwise it never runs
// again, exactly as the scheduler's contract promises.
func (s *Scheduler) Block() {
	g := s.lock.Lock()
	me := curThread
	me.state = Blocked
	next := s.popReadyLocked()
	if next == nil {
		// Nothing runnable: spin-wait for a wake-up under interrupts,
		// then retry. This happens whenever every thread in the system
		// is asleep or blocked, such as while the boot thread waits out
		// its Sleep(1000) loop.
		g.Unlock()
		s.waitForReady()
		g = s.lock.Lock()
		next = s.popReadyLocked()
	}
	s.switchTo(next, g)
}

// waitForReady busy-waits with interrupts enabled until the ready queue
// is non-empty, giving the timer tick and device interrupts a chance
// to run and call Ready.
func (s *Scheduler) waitForReady() {
	for {
		g, ok := s.lock.TryLock()
		if ok {
			empty := s.readyHead == nil
			g.Unlock()
			if !empty {
				return
			}
		}
	}
}

// Sleep blocks the calling thread until at least ms milliseconds have
// elapsed.
func (s *Scheduler) Sleep(ms int64) {
	g := s.lock.Lock()
	me := curThread
	me.state = Sleeping
	wake := s.systimeMs() + ms
	s.sleeping = append(s.sleeping, sleeper{t: me, wake: wake})
	next := s.popReadyLocked()
	if next == nil {
		g.Unlock()
		s.waitForReady()
		g = s.lock.Lock()
		next = s.popReadyLocked()
	}
	s.switchTo(next, g)
}

// CheckSleepList moves every sleeper whose deadline has passed to the
// ready queue. Called once per timer tick from SwitchThread.
func (s *Scheduler) CheckSleepList() {
	g := s.lock.Lock()
	now := s.systimeMs()
	var due []*Thread
	remaining := s.sleeping[:0]
	for _, sl := range s.sleeping {
		if now >= sl.wake {
			due = append(due, sl.t)
		} else {
			remaining = append(remaining, sl)
		}
	}
	s.sleeping = remaining
	g.Unlock()

	for _, t := range due {
		s.Ready(t)
	}
}

// SwitchThread is the preemptive tick path: it checks the sleep list,
// then pops the next ready thread, pushing the current one to the tail
// before switching. If the ready queue is empty it returns without
// switching (the current thread simply keeps running).
func (s *Scheduler) SwitchThread() {
	s.CheckSleepList()

	g := s.lock.Lock()
	next := s.popReadyLocked()
	if next == nil {
		g.Unlock()
		return
	}
	me := curThread
	me.state = Ready
	me.next = nil
	if s.readyTail == nil {
		s.readyHead, s.readyTail = me, me
	} else {
		s.readyTail.next = me
		s.readyTail = me
	}
	s.switchTo(next, g)
}

// Join blocks the calling thread until the thread identified by id has
// exited.
func (s *Scheduler) Join(id defs.Tid_t) defs.Err_t {
	g := s.lock.Lock()
	if _, alive := s.byTid[id]; !alive {
		g.Unlock()
		return defs.ESRCH
	}
	me := curThread
	me.state = Joined
	s.joinWaiters[id] = append(s.joinWaiters[id], me)
	next := s.popReadyLocked()
	if next == nil {
		g.Unlock()
		s.waitForReady()
		g = s.lock.Lock()
		next = s.popReadyLocked()
	}
	s.switchTo(next, g)
	return 0
}

// Exit removes the calling thread from every structure, wakes its
// joiners, and switches away from it for the last time; it never
// returns to its caller.
func (s *Scheduler) Exit() {
	g := s.lock.Lock()
	me := curThread
	me.state = Exited
	delete(s.byTid, me.ID)
	waiters := s.joinWaiters[me.ID]
	delete(s.joinWaiters, me.ID)
	next := s.popReadyLocked()
	g.Unlock()

	for _, w := range waiters {
		s.Ready(w)
	}

	me.Process.removeThread(me.ID)

	g = s.lock.Lock()
	if next == nil {
		g.Unlock()
		s.waitForReady()
		g = s.lock.Lock()
		next = s.popReadyLocked()
	}
	s.switchTo(next, g)
}

// switchTo installs next as the running thread and performs the actual
// register-level context switch, releasing g only after the switch has
// been initiated (threadSwitch records the outgoing RSP into me's
// saved-state slot, so it is safe to unlock only once that slot is no
// longer being written — which is exactly when this function, on this
// thread, resumes after being switched back in).
func (s *Scheduler) switchTo(next *Thread, g irqlock.Guard) {
	me := curThread
	next.state = Running
	curThread = next
	if rsp0Setter != nil {
		rsp0Setter(next.kernelStackTop())
	}
	g.Unlock()
	threadSwitch(&me.savedRSP, next.savedRSP)
}

// CurrentIDs implements irqlock.Blocker.
func (s *Scheduler) CurrentIDs() (defs.Pid_t, defs.Tid_t) {
	return curThread.ids()
}

// Deblock implements irqlock.Blocker: it looks the thread up by tid and
// readies it. pid is accepted for interface symmetry with CurrentIDs
// but isn't needed to disambiguate, since tids are globally unique.
func (s *Scheduler) Deblock(pid defs.Pid_t, tid defs.Tid_t) {
	s.lock.Lock()
	t, ok := s.byTid[tid]
	s.lock.Unlock()
	if ok {
		s.Ready(t)
	}
}
