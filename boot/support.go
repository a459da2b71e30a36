package boot

import (
	"unsafe"

	"corvus/defs"
	"corvus/loader"
	"corvus/mem"
	"corvus/naming"
	"corvus/sched"
	"corvus/ustr"
	"corvus/vm"
)

// initPath is where loadInit looks for the initrd's own init binary.
const initPath = "/init"

// loadInit parses and builds the initrd's init binary, if present,
// as the system's first real user process. parent is passed through to
// loader.Load, which takes the address space and naming root from d
// instead; the process it builds is independent of parent, not a child
// of it in any process-tree sense this kernel tracks.
func loadInit(d loader.Deps, parent *sched.Process) (*sched.Process, defs.Err_t) {
	if _, err := naming.Lookup(d.Root, ustrOf("init")); err != 0 {
		return nil, err
	}
	return loader.Load(d, parent, initPath, nil)
}

func ustrOf(name string) ustr.Ustr {
	return ustr.MkUstrRoot().Extend(name)
}

// identityMapBytes views a freshly allocated, not-yet-mapped frame run
// as a byte slice under the kernel's identity map of physical memory,
// the same assumption vm.AddressSpace's page-table walk relies on.
func identityMapBytes(base mem.Pa_t, n int) []uint8 {
	return unsafe.Slice((*uint8)(unsafe.Pointer(uintptr(base))), n)
}

// noUserContext is the intr.Faulter used before any process has ever
// run: every exception at this point in bring-up is, by definition,
// kernel-mode.
type noUserContext struct{}

func (noUserContext) InUserMode() bool                { return false }
func (noUserContext) KillCurrentProcess(reason string) {}

// pageFaultBridge adapts the kernel address space's page-fault
// resolver to the narrow interface intr.ExceptionHandler expects,
// without intr needing to import vm.
type pageFaultBridge struct {
	k *Kernel
}

func (b *pageFaultBridge) HandleFault(addr uintptr, write bool) bool {
	return b.k.KernelAS.Resolve(addr, write) == vm.Resolved
}

// loadInitrd recreates every file the loader's initrd payload contains
// as a file directly under root: each name is touched in root and its
// bytes written at offset 0. No intermediate directories are created,
// and a name that already exists as a non-file is skipped. The parsing of
// any executable the initrd carries belongs to the loader
// (process_execute_binary), not to bring-up.
func loadInitrd(root *naming.Directory, files map[string][]uint8) {
	for name, data := range files {
		if err := root.Touch(name); err != 0 {
			continue
		}
		n, _ := naming.Lookup(root, ustrOf(name))
		f, ok := n.(*naming.File)
		if !ok {
			continue
		}
		f.WriteAt(0, data)
	}
}
