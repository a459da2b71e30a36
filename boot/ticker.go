package boot

import (
	"sync/atomic"

	"corvus/intr"
)

// tickMs is the PIT/APIC-timer period this kernel calibrates to: every
// firing advances the millisecond clock sleep() measures against and
// gives the scheduler its preemption point.
const tickMs = 10

// tickHandler implements intr.Handler for the periodic timer vector: it
// advances the monotonic clock and invokes the scheduler's preemption
// entry point, exactly the "calibrated periodic tick driving the
// scheduler's preemption" the APIC boundary promises.
type tickHandler struct {
	k *Kernel
}

func (t *tickHandler) Trigger(vector intr.Vector) {
	atomic.AddInt64(&systimeMs, tickMs)
	t.k.Scheduler.SwitchThread()
}
