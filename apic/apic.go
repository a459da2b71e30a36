// Package apic declares the boundary the kernel core needs from its
// interrupt controller: allow/mask a vector, signal end-of-interrupt,
// and drive the scheduler's preemption off a calibrated periodic tick.
// The concrete driver (local APIC discovery, I/O APIC redirection
// table, legacy PIC-to-APIC vector remap) is an external collaborator
// out of scope for this core; NullAPIC exists so tests and early
// bring-up can exercise the dispatcher and scheduler without one.
package apic

// Controller is what the core consumes from an APIC driver.
type Controller interface {
	// Allow unmasks vector so interrupts for it are delivered.
	Allow(vector uint8)
	// Mask suppresses delivery of vector until a matching Allow.
	Mask(vector uint8)
	// EOI signals end-of-interrupt for whichever vector is currently
	// being serviced.
	EOI()
	// StartTicker arms a periodic timer interrupt at the given
	// interval, driving the scheduler's preemption point.
	StartTicker(periodMs uint32)
}

// NullAPIC is a no-op Controller used by tests and by any bring-up path
// that runs before the real driver has attached.
type NullAPIC struct {
	Allowed map[uint8]bool
	EOIs    int
}

// NewNullAPIC creates a NullAPIC with empty bookkeeping.
func NewNullAPIC() *NullAPIC {
	return &NullAPIC{Allowed: make(map[uint8]bool)}
}

func (n *NullAPIC) Allow(vector uint8) { n.Allowed[vector] = true }
func (n *NullAPIC) Mask(vector uint8)  { n.Allowed[vector] = false }
func (n *NullAPIC) EOI()               { n.EOIs++ }
func (n *NullAPIC) StartTicker(periodMs uint32) {}
