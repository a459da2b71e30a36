package vm

import (
	"unsafe"

	"corvus/mem"
)

// FaultAction tells the interrupt dispatcher's page-fault handler what
// to do after Resolve returns.
type FaultAction int

const (
	// Resolved means the fault was repaired (a frame was mapped); the
	// faulting instruction should simply be retried.
	Resolved FaultAction = iota
	// Fatal means no VMA covers the address, or the access violated
	// the VMA's permissions; the faulting process must be terminated.
	Fatal
)

// Resolve implements the page-fault policy of demand paging and
// downward stack growth: it maps a fresh, zeroed frame for addr if a
// VMA covers it (growing a Stack VMA first if addr lies one page below
// it), or reports Fatal if nothing does.
func (as *AddressSpace) Resolve(addr uintptr, writeFault bool) FaultAction {
	as.Lock()
	v, ok := as.VMAs.FindContaining(addr)
	if !ok {
		if sv, isStack := as.VMAs.FindVMA(Stack); isStack && addr < sv.Start {
			if err := as.VMAs.GrowStackDown(sv, addr); err == 0 {
				v, ok = sv, true
			}
		}
	}
	if !ok || (writeFault && v.Flags&mem.PTE_W == 0) {
		as.Unlock()
		return Fatal
	}
	space := Kernel
	if v.Flags&mem.PTE_U != 0 {
		space = User
	}
	as.Unlock()

	page := addr &^ uintptr(mem.PGOFFSET)
	pa, err := as.frames.Alloc(1)
	if err != 0 {
		return Fatal
	}
	mem.Zero(unsafe.Slice((*uint8)(unsafe.Pointer(uintptr(pa))), mem.PGSIZE))
	if werr := as.Map(page, pa, 1, space, v.Flags); werr != 0 {
		as.frames.Free(pa, 1)
		return Fatal
	}
	return Resolved
}
