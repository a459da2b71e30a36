package intr

import (
	"fmt"

	"corvus/cpu"
)

// Faulter is implemented by whatever owns the faulting context: it
// reports whether the fault happened in user mode and gives the
// dispatcher a way to terminate just the offending process rather than
// the whole kernel.
type Faulter interface {
	InUserMode() bool
	KillCurrentProcess(reason string)
}

// PageFaultHandler resolves address-space faults (vm.AddressSpace.Resolve
// in the naming/vm layer); the intr package only needs the boolean
// repaired/fatal outcome, not the vm package's types, to avoid a
// dependency the dispatcher doesn't otherwise need.
type PageFaultHandler interface {
	HandleFault(addr uintptr, write bool) (repaired bool)
}

// fatalVectors are the exception vectors that are never survivable for
// the faulting context: a user process hitting one exits; the kernel
// hitting one panics.
var fatalVectors = map[Vector]bool{
	DivisionByZero:         true,
	InvalidOpcode:          true,
	DoubleFault:            true,
	InvalidTSS:             true,
	SegmentNotPresent:      true,
	StackSegmentFault:      true,
	GeneralProtectionFault: true,
	X87FloatingPoint:       true,
	AlignmentCheck:         true,
	MachineCheck:           true,
	SimdFloatingPoint:      true,
}

// ExceptionHandler implements Handler for vectors 0-31: fatal vectors
// terminate the process (user mode) or panic (kernel mode); page
// faults are routed to pf; debug/breakpoint print a diagnostic and
// resume.
type ExceptionHandler struct {
	faulter Faulter
	pf      PageFaultHandler
}

// NewExceptionHandler creates the bring-up handler for vectors 0-31.
func NewExceptionHandler(faulter Faulter, pf PageFaultHandler) *ExceptionHandler {
	return &ExceptionHandler{faulter: faulter, pf: pf}
}

// Trigger implements Handler.
func (e *ExceptionHandler) Trigger(vector Vector) {
	switch {
	case vector == Debug || vector == Breakpoint:
		fmt.Printf("intr: diagnostic trap vector=%d rsp=%#x\n", vector, cpu.CurrentRSP())
		return
	case vector == PageFault:
		addr := cpu.ReadCR2()
		if e.pf != nil && e.pf.HandleFault(addr, false) {
			return
		}
		e.fatal(vector, fmt.Sprintf("unhandled page fault at %#x", addr))
	case fatalVectors[vector]:
		e.fatal(vector, fmt.Sprintf("fatal exception vector=%d", vector))
	default:
		fmt.Printf("intr: unassigned exception vector=%d ignored\n", vector)
	}
}

func (e *ExceptionHandler) fatal(vector Vector, reason string) {
	if e.faulter != nil && e.faulter.InUserMode() {
		e.faulter.KillCurrentProcess(reason)
		return
	}
	panic(reason)
}

// RegisterExceptions installs h across all 32 exception vectors that
// bring-up handles directly (0-31); device vectors start well clear of
// this range so handler assignment for them never collides.
func RegisterExceptions(d *Dispatcher, h Handler) {
	for v := Vector(0); v < 32; v++ {
		d.Assign(v, h)
	}
}
