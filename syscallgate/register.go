package syscallgate

import (
	"corvus/mem"
	"corvus/sched"
)

// Deps collects everything a syscall handler needs beyond the calling
// process/thread/args: the subsystems bring-up already constructed.
// RegisterAll closes over these once, at boot, rather than every
// handler needing its own copy threaded in separately.
type Deps struct {
	Scheduler *sched.Scheduler
	Frames    *mem.FrameAllocator
	Execute   Execute
	SystimeMs func() int64
}

// RegisterAll installs every syscall this kernel implements into g,
// grouped the same way the bring-up table groups them (Process,
// Memory, Time, Naming, peripheral). Called exactly once from
// boot.Start; outside the gate's own tests, the register*Syscalls
// functions it calls are the only callers of Gate.Register.
func RegisterAll(g *Gate, d Deps) {
	registerProcessSyscalls(g, d)
	registerMemorySyscalls(g, d)
	registerTimeSyscalls(g, d)
	registerNamingSyscalls(g, d)
	registerPeripheralSyscalls(g, d)
}
