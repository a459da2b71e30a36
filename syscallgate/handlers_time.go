package syscallgate

import (
	"sync/atomic"

	"corvus/defs"
	"corvus/sched"
)

// wallClockOffsetMs is added to the monotonic systime to answer
// GetDate/SetDate: this kernel has no real CMOS/RTC driver (see the
// APIC package's NullAPIC note on peripheral scope), so "wall clock"
// is simply an adjustable offset from the boot-time monotonic clock,
// the simplest thing that makes SetDate observable by a later GetDate.
var wallClockOffsetMs int64

func registerTimeSyscalls(g *Gate, d Deps) {
	g.Register(SystimeMs, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		return d.SystimeMs(), 0
	})

	g.Register(GetDate, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		return d.SystimeMs() + atomic.LoadInt64(&wallClockOffsetMs), 0
	})

	g.Register(SetDate, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		wantMs := int64(args.A0)
		atomic.StoreInt64(&wallClockOffsetMs, wantMs-d.SystimeMs())
		return 0, 0
	})
}
