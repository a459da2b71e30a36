// Package syscallgate implements the system-call gate: the fixed
// dispatch table a fast SYSCALL/SYSRET entry indexes into, and the
// faulted-copy primitives syscall handlers use to move bytes to and
// from user memory. Grounded on original_source's
// syscall/syscall_dispatcher.rs for the fixed-table-by-number shape,
// and on Biscuit's vm.Vm_t Userdmap8_inner family for the
// page-table-walk-based user copy, simplified to this kernel's
// single-level VMA/page-table lookup.
package syscallgate

import (
	"corvus/defs"
	"corvus/sched"
)

// Number identifies a syscall by its dispatch-table index, grouped by
// subject the same way the recognized-calls table groups them.
type Number int

const (
	ProcessID Number = iota
	ProcessExit
	ProcessExecuteBinary
	ThreadCreate
	ThreadID
	ThreadSwitch
	ThreadSleep
	ThreadJoin
	ThreadExit

	MapMemory
	MapUserHeap

	SystimeMs
	GetDate
	SetDate

	Open
	Close
	Read
	Write
	Seek
	Readdir
	Mkdir
	Touch
	Mkentry
	Cwd
	Cd

	TerminalRead
	TerminalWrite
	TerminalConsume
	KeyboardRead
	MouseRead

	MapFramebuffer
	WriteGraphic

	MapSystemInfo
	Log

	numSyscalls
)

// Args carries one syscall's six register arguments, already moved off
// rdi,rsi,rdx,r10,r8,r9 by the low-level entry stub; the call number
// travels separately as a Number.
type Args struct {
	A0, A1, A2, A3, A4, A5 uintptr
}

// Handler implements one syscall's behavior. It returns a non-negative
// result on success, or a non-zero Err_t (already a negative errno),
// which Dispatch returns unchanged as the -errno result.
type Handler func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t)

// Gate is the fixed dispatch table indexed by call number.
type Gate struct {
	table [numSyscalls]Handler
}

// NewGate creates an empty gate; the bootstrap calls Register for
// every syscall number the bring-up table lists.
func NewGate() *Gate {
	return &Gate{}
}

// Register installs h as the handler for n, overwriting any previous
// handler (bring-up registers each number exactly once).
func (g *Gate) Register(n Number, h Handler) {
	g.table[n] = h
}

// Dispatch is called by dispatchEntry once the SYSCALL entry stub has
// swapped onto the kernel stack SetKernelStack recorded and saved the
// user's argument registers. It returns the raw value the stub moves
// into RAX before SYSRET: a non-negative result on success, or -errno
// on failure.
func (g *Gate) Dispatch(num Number, proc *sched.Process, th *sched.Thread, args Args) int64 {
	if num < 0 || num >= numSyscalls || g.table[num] == nil {
		return int64(defs.ENOTSUP)
	}
	val, err := g.table[num](proc, th, args)
	if err != 0 {
		return int64(err)
	}
	return val
}
