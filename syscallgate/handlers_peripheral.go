package syscallgate

import (
	"fmt"

	"corvus/defs"
	"corvus/sched"
)

// registerPeripheralSyscalls installs the device-facing syscall group:
// terminal, keyboard, mouse, framebuffer, and system-info. This kernel
// has no real console, keyboard, mouse, or framebuffer driver behind
// its NullAPIC bring-up (see apic.NewNullAPIC's own scope note), so
// every one of these reports ENOTSUP rather than faking device access
// that doesn't exist; Log is the one exception, since it only needs
// the kernel's own stdout.
func registerPeripheralSyscalls(g *Gate, d Deps) {
	unsupported := func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		return 0, defs.ENOTSUP
	}
	g.Register(TerminalRead, unsupported)
	g.Register(TerminalWrite, unsupported)
	g.Register(TerminalConsume, unsupported)
	g.Register(KeyboardRead, unsupported)
	g.Register(MouseRead, unsupported)
	g.Register(MapFramebuffer, unsupported)
	g.Register(WriteGraphic, unsupported)
	g.Register(MapSystemInfo, unsupported)

	g.Register(Log, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		msg, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		fmt.Printf("pid=%d tid=%d: %s\n", proc.ID, th.ID, msg)
		return int64(len(msg)), 0
	})
}
