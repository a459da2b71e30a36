// Package sched implements the thread/process/scheduler nucleus: a
// single-CPU cooperative kernel preempted only at timer ticks. Adapted
// from original_source's thread.rs/scheduler.rs (hhu-bsinfo/D3OS) for
// the ready-queue/sleep-list algorithm, and from Biscuit's tinfo.Tnote_t
// for the Go idiom of a per-thread state struct guarded by a lock.
package sched

import (
	"sync/atomic"
	"unsafe"

	"corvus/defs"
)

// State is a thread's scheduling state.
type State int

const (
	Ready State = iota
	Running
	Sleeping
	Blocked
	Joined
	Exited
)

// StackSize is the size of a kernel stack allocated for a new thread,
// matching the 1MiB stacks original_source's thread.rs carves out of
// the kernel heap.
const StackSize = 1 << 20

// initStackEntries is the number of 8-byte words pushed onto a freshly
// prepared stack before the thread has run once: the 14 callee-saved
// registers threadSwitch restores, plus rflags, plus the return address
// that lands in kickoffTrampoline.
const initStackEntries = 16

var nextTid int64

func allocTid() defs.Tid_t {
	return defs.Tid_t(atomic.AddInt64(&nextTid, 1))
}

// Thread is a single schedulable execution record. It owns its kernel
// stack; the stack is pre-populated so that the very first context
// switch into it pops a synthetic frame landing in kickoffTrampoline,
// which invokes Entry and finally exits through the owning scheduler.
type Thread struct {
	ID      defs.Tid_t
	Process *Process

	stack    []uint8
	savedRSP uintptr

	Entry func()

	state State

	// next chains this thread into the scheduler's intrusive ready
	// queue; the sleep list and the join-waiter lists are slices and do
	// not use it. Only the owning Scheduler touches it.
	next *Thread
}

// NewThread allocates a kernel stack and prepares it so the first
// switch into this thread enters kickoffTrampoline. The thread starts
// in the Ready state; the caller is responsible for enqueuing it on a
// Scheduler.
func NewThread(proc *Process, entry func()) *Thread {
	t := &Thread{
		ID:      allocTid(),
		Process: proc,
		stack:   make([]uint8, StackSize),
		state:   Ready,
		Entry:   entry,
	}
	t.prepareStack()
	return t
}

// prepareStack writes a synthetic switch frame at the top of the
// thread's stack, mirroring original_source's thread.rs prepare_stack:
// callee-saved registers zeroed, flags set with interrupts enabled, and
// the return address pointed at kickoffTrampoline so threadSwitch's
// trailing RET lands there on the very first switch into this thread.
func (t *Thread) prepareStack() {
	top := t.kernelStackTop()
	sp := top - initStackEntries*8

	// Layout from low to high address, matching what threadSwitch's pop
	// sequence expects: rflags, then the 14 saved registers in pop
	// order, then the return address threadSwitch's RET consumes.
	words := (*[initStackEntries]uint64)(unsafe.Pointer(sp))
	for i := range words {
		words[i] = 0
	}
	words[0] = 0x202 // rflags: IF set
	words[initStackEntries-1] = uint64(threadBootstrapPC())

	t.savedRSP = sp
}

// kickoffTrampoline is what threadBootstrap (thread_asm_amd64.s) calls
// on the very first switch into a brand-new thread: it runs the
// thread's entry closure and then exits it through the scheduler that
// owns it. It never returns; threadBootstrap halts if it ever does.
func kickoffTrampoline() {
	t := current()
	t.Entry()
	t.Process.scheduler.Exit()
}

func (t *Thread) ids() (defs.Pid_t, defs.Tid_t) {
	return t.Process.ID, t.ID
}

// kernelStackTop returns the address one past the top of this
// thread's kernel stack: the value the TSS RSP0 field must hold while
// the thread is running so that a trap or SYSCALL taken from user
// mode lands on the right stack (see SetRSP0Setter).
func (t *Thread) kernelStackTop() uintptr {
	return uintptr(unsafe.Pointer(&t.stack[len(t.stack)-1])) + 1
}
