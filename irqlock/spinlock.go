// Package irqlock implements the kernel's synchronization primitives:
// an IRQ-save spinlock and a wait queue built on top of it. Adapted
// from original_source's irqsave_spinlock.rs and wait_queue.rs
// (hhu-bsinfo/D3OS), translated into an embeddable Go struct guarded by
// atomics rather than a smart pointer and a borrow checker.
package irqlock

import (
	"sync/atomic"

	"corvus/cpu"
)

// Spinlock is a lock safe to acquire from interrupt context: Lock
// disables local interrupts first (recording the prior state) and only
// then spins on a compare-and-swap, so a handler that fires on this CPU
// while the lock is held can never deadlock against itself. It must
// never be held across a call into the scheduler (Block/Sleep/Switch/
// Exit).
type Spinlock struct {
	held uint32
}

// Guard is returned by Lock and restores the prior interrupt state when
// released.
type Guard struct {
	l    *Spinlock
	prev bool
}

// Lock acquires the lock, disabling interrupts until Unlock.
func (l *Spinlock) Lock() Guard {
	prev := cpu.DisableInterrupts()
	for !atomic.CompareAndSwapUint32(&l.held, 0, 1) {
		cpu.Pause()
	}
	return Guard{l: l, prev: prev}
}

// TryLock attempts to acquire the lock without spinning. It still
// disables interrupts on success; on failure interrupts are left as
// they were.
func (l *Spinlock) TryLock() (Guard, bool) {
	prev := cpu.DisableInterrupts()
	if atomic.CompareAndSwapUint32(&l.held, 0, 1) {
		return Guard{l: l, prev: prev}, true
	}
	cpu.RestoreInterrupts(prev)
	return Guard{}, false
}

// ForceUnlock releases the lock unconditionally, regardless of which
// Guard (if any) is thought to hold it, and restores interrupts to
// enabled. It exists solely for the interrupt dispatcher's contended
// try-lock path: a handler chain lookup must make progress even if
// assign is mid-push on another path, and the dispatcher cannot know
// which Guard to pass back.
func (l *Spinlock) ForceUnlock() {
	atomic.StoreUint32(&l.held, 0)
	cpu.EnableInterrupts()
}

// Unlock releases the lock and restores the interrupt state observed
// at Lock time.
func (g Guard) Unlock() {
	atomic.StoreUint32(&g.l.held, 0)
	cpu.RestoreInterrupts(g.prev)
}
