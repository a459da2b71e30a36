package syscallgate

import (
	"encoding/binary"

	"corvus/defs"
	"corvus/sched"
	"corvus/vm"
)

// Execute is the loader hook process_execute_binary dispatches to: it
// parses an initrd binary, builds a fresh address space and process,
// maps its Code/Heap/Environment VMAs, and readies a main thread.
// Implemented by loader.Load and wired in by boot.Start; syscallgate
// only knows its shape and does not import the loader package.
type Execute func(parent *sched.Process, path string, argv []string) (*sched.Process, defs.Err_t)

func registerProcessSyscalls(g *Gate, d Deps) {
	g.Register(ProcessID, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		return int64(proc.ID), 0
	})

	g.Register(ProcessExit, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		proc.SetExitStatus(int(int32(args.A0)))
		d.Scheduler.Exit()
		return 0, 0 // unreachable: Exit never returns to its caller
	})

	g.Register(ProcessExecuteBinary, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		if d.Execute == nil {
			return 0, defs.ENOTSUP
		}
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		argv, err := readUserArgv(proc.Space, args.A1)
		if err != 0 {
			return 0, err
		}
		child, err := d.Execute(proc, resolvePath(proc, path).String(), argv)
		if err != 0 {
			return 0, err
		}
		return int64(child.ID), 0
	})

	g.Register(ThreadCreate, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		// args.A0 is the user-mode entry address the new thread should
		// start at. This kernel is hosted on the normal Go runtime (see
		// the loader's own scope note) and never actually performs a
		// ring0->ring3 transition, so there is no way to jump a real CPU
		// into arbitrary user bytes from here; the thread this spawns
		// immediately exits rather than faking execution it cannot
		// perform. Bookkeeping (a fresh Tid, ready-queue placement,
		// join-ability) is otherwise exactly what a real entry would do.
		entry := args.A0
		if _, mapped := proc.Space.Mapped(entry &^ 0xfff); !mapped {
			return 0, defs.EFAULT
		}
		newThread := d.Scheduler.Spawn(proc, func() {})
		return int64(newThread.ID), 0
	})

	g.Register(ThreadID, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		return int64(th.ID), 0
	})

	g.Register(ThreadSwitch, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		d.Scheduler.SwitchThread()
		return 0, 0
	})

	g.Register(ThreadSleep, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		d.Scheduler.Sleep(int64(args.A0))
		return 0, 0
	})

	g.Register(ThreadJoin, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		err := d.Scheduler.Join(defs.Tid_t(args.A0))
		return 0, err
	})

	g.Register(ThreadExit, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		d.Scheduler.Exit()
		return 0, 0 // unreachable
	})
}

// maxArgv bounds how many pointers readUserArgv will follow, the same
// defensive cap ReadUserString applies to string length.
const maxArgv = 256

// readUserArgv copies a NULL-pointer-terminated argv array: uva points
// at a run of 8-byte user addresses, each itself a NUL-terminated
// string, ending with a zero entry. A zero uva means "no arguments".
func readUserArgv(as *vm.AddressSpace, uva uintptr) ([]string, defs.Err_t) {
	if uva == 0 {
		return nil, 0
	}
	var argv []string
	var ptrBuf [8]uint8
	for i := 0; i < maxArgv; i++ {
		if err := CopyFromUser(as, uva+uintptr(i*8), ptrBuf[:]); err != 0 {
			return nil, err
		}
		p := uintptr(binary.LittleEndian.Uint64(ptrBuf[:]))
		if p == 0 {
			return argv, 0
		}
		s, err := ReadUserString(as, p)
		if err != 0 {
			return nil, err
		}
		argv = append(argv, s)
	}
	return nil, defs.EINVAL
}
