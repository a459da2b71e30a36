// Package intr implements the interrupt dispatcher: a 256-entry vector
// table of handler chains, walked by the low-level trap stubs on every
// interrupt. Grounded directly on
// original_source/src/kernel/interrupt_dispatcher.rs, including its
// central contended-lock trick: a chain's lock is a try-lock that gets
// force-released from inside IRQ context if contended, so a dispatch
// can never hang behind an assign that happens to be in progress.
package intr

import (
	"corvus/irqlock"
)

// Vector names the fixed exception, legacy-device, and local-APIC
// vectors this kernel assigns handlers to at bring-up, matching
// original_source's InterruptVector enum layout.
type Vector uint8

const (
	DivisionByZero         Vector = 0
	Debug                  Vector = 1
	NonMaskableInterrupt   Vector = 2
	Breakpoint             Vector = 3
	Overflow               Vector = 4
	BoundRangeExceeded     Vector = 5
	InvalidOpcode          Vector = 6
	DeviceNotAvailable     Vector = 7
	DoubleFault            Vector = 8
	InvalidTSS             Vector = 10
	SegmentNotPresent      Vector = 11
	StackSegmentFault      Vector = 12
	GeneralProtectionFault Vector = 13
	PageFault              Vector = 14
	X87FloatingPoint       Vector = 16
	AlignmentCheck         Vector = 17
	MachineCheck           Vector = 18
	SimdFloatingPoint      Vector = 19

	Pit      Vector = 0x20
	Keyboard Vector = 0x21
	Cascade  Vector = 0x22
	Com2     Vector = 0x23
	Com1     Vector = 0x24
	Rtc      Vector = 0x28
	Mouse    Vector = 0x2c

	SystemCall Vector = 0x86

	ApicTimer Vector = 0xf9
	ApicError Vector = 0xfe
	Spurious  Vector = 0xff
)

const maxVectors = 256

// Handler reacts to one interrupt's delivery. Assign requires it not
// call Assign on its own vector from inside Trigger.
type Handler interface {
	Trigger(vector Vector)
}

// EOISignaler is the narrow slice of the APIC the dispatcher needs:
// acknowledging the interrupt once every handler in the chain has run.
type EOISignaler interface {
	EOI()
}

// Dispatcher is the 256-vector handler-chain table.
type Dispatcher struct {
	chains [maxVectors]chain
	apic   EOISignaler
}

type chain struct {
	lock     irqlock.Spinlock
	handlers []Handler
}

// NewDispatcher creates a dispatcher that signals end-of-interrupt
// through apic once a chain finishes running.
func NewDispatcher(apic EOISignaler) *Dispatcher {
	return &Dispatcher{apic: apic}
}

// Assign adds h to vector's chain. Safe to call from any context; the
// lock is only held for the O(1) append.
func (d *Dispatcher) Assign(vector Vector, h Handler) {
	c := &d.chains[vector]
	g := c.lock.Lock()
	c.handlers = append(c.handlers, h)
	g.Unlock()
}

// Dispatch is called by the low-level trap stub for vector n. It walks
// the chain, forcing the lock open if an Assign happens to be
// contending for it, then signals EOI.
func (d *Dispatcher) Dispatch(n uint8) {
	c := &d.chains[n]

	g, ok := c.lock.TryLock()
	for !ok {
		c.lock.ForceUnlock()
		g, ok = c.lock.TryLock()
	}
	handlers := c.handlers
	g.Unlock()

	for _, h := range handlers {
		h.Trigger(Vector(n))
	}

	if d.apic != nil {
		d.apic.EOI()
	}
}
