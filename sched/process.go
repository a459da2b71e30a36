package sched

import (
	"sync"

	"corvus/defs"
	"corvus/naming"
	"corvus/ustr"
	"corvus/vm"
)

var nextPid int64

func allocPid() defs.Pid_t {
	nextPid++
	return defs.Pid_t(nextPid)
}

// Process groups the threads that share one address space, one working
// directory, and one open-file table. Adapted from
// original_source's process.rs: add_vma/find_vma/update_vma live on
// the address space itself (vm.AddressSpace), Process only owns the
// bookkeeping that is process-wide rather than address-space-wide.
type Process struct {
	ID    defs.Pid_t
	Space *vm.AddressSpace
	Files *naming.OpenFiles
	Root  *naming.Directory

	scheduler *Scheduler

	mu      sync.Mutex
	threads []*Tid
	exited  bool
	status  int
	cwd     ustr.Ustr
}

// Tid pairs a thread's identifier with its live Thread record, kept so
// a process can enumerate its own threads without walking the
// scheduler's global tables.
type Tid struct {
	ID defs.Tid_t
	T  *Thread
}

// NewProcess creates a process over the given address space, with
// naming root root, cwd "/" and a fresh open-file table, owned by s.
func NewProcess(s *Scheduler, space *vm.AddressSpace, root *naming.Directory) *Process {
	return &Process{
		ID:        allocPid(),
		Space:     space,
		Files:     naming.NewOpenFiles(),
		Root:      root,
		scheduler: s,
		cwd:       ustr.MkUstrRoot(),
	}
}

// GetCwd reports the process's current working directory, as an
// absolute path the naming service can resolve directly.
func (p *Process) GetCwd() ustr.Ustr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cwd
}

// SetCwd replaces the process's current working directory. Callers
// are expected to have already validated path resolves to a directory
// (see the cd syscall handler).
func (p *Process) SetCwd(path ustr.Ustr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cwd = path
}

func (p *Process) addThread(t *Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threads = append(p.threads, &Tid{ID: t.ID, T: t})
}

func (p *Process) removeThread(id defs.Tid_t) (last bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, tid := range p.threads {
		if tid.ID == id {
			p.threads = append(p.threads[:i], p.threads[i+1:]...)
			break
		}
	}
	return len(p.threads) == 0
}

// SetExitStatus records the status a process exits with, the first
// time it is called; later calls (from sibling threads racing to exit
// the whole process) are no-ops.
func (p *Process) SetExitStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return
	}
	p.exited = true
	p.status = status
}

// ExitStatus reports the status a process exited with and whether it
// has exited at all.
func (p *Process) ExitStatus() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.exited
}
