// Package vm implements a process's address space: the 4-level page
// table and the VMA table describing what each mapped range is for.
// Adapted from Biscuit's vm.Vm_t / mem.Pmap_t, with copy-on-write and
// cross-CPU TLB shootdown removed (this kernel runs one active CPU),
// and demand paging reshaped around the four VMA roles
// original_source's memory/vma.rs calls Code, Heap, Stack, and
// Environment.
package vm

import (
	"sync"
	"unsafe"

	"corvus/cpu"
	"corvus/defs"
	"corvus/mem"
)

// Space distinguishes mappings the kernel half of every address space
// shares from mappings private to one user process.
type Space int

const (
	Kernel Space = iota
	User
)

// AddressSpace is one process's (or the kernel's own) page table plus
// the VMA table describing it. The mutex guards both; page-table
// manipulation is only ever done while holding it, per the VMA-list
// locking policy every process follows.
type AddressSpace struct {
	sync.Mutex

	pmap  *mem.Pmap_t
	ppmap mem.Pa_t

	frames *mem.FrameAllocator
	VMAs   VMATable
}

// physPage views a physical page as a page-table page. It relies on
// the kernel's identity mapping of all physical memory established at
// bring-up: physical address pa is also valid virtual address pa.
func physPage(pa mem.Pa_t) *mem.Pmap_t {
	return (*mem.Pmap_t)(unsafe.Pointer(uintptr(pa)))
}

// NewKernelAddressSpace allocates a fresh top-level page table with no
// entries: the bootstrap populates it directly before any user address
// space is derived from it.
func NewKernelAddressSpace(frames *mem.FrameAllocator) *AddressSpace {
	pa, err := frames.Alloc(1)
	if err != 0 {
		panic("vm: out of memory allocating kernel pmap")
	}
	mem.Zero(physPage(pa)[:])
	return &AddressSpace{pmap: physPage(pa), ppmap: pa, frames: frames}
}

// NewUserAddressSpace creates a user address space sharing kernel's
// top-level entries (the upper half of the address range), so kernel
// code is reachable from every process without separate mappings.
func NewUserAddressSpace(kernel *AddressSpace, frames *mem.FrameAllocator) *AddressSpace {
	pa, err := frames.Alloc(1)
	if err != 0 {
		panic("vm: out of memory allocating user pmap")
	}
	np := physPage(pa)
	mem.Zero(np[:])

	kernel.Lock()
	copy(np[256:], kernel.pmap[256:]) // top half: canonical kernel range
	kernel.Unlock()

	return &AddressSpace{pmap: np, ppmap: pa, frames: frames}
}

// PhysRoot returns the physical address to load into CR3 to activate
// this address space.
func (as *AddressSpace) PhysRoot() mem.Pa_t {
	return as.ppmap
}

const entriesPerLevel = 512

func pmIndex(va uintptr, level uint) int {
	shift := mem.PGSHIFT + 9*level
	return int((va >> shift) & 0x1ff)
}

// walk returns the level-1 PTE for va, allocating intermediate
// page-table pages along the way if create is true. Must be called
// with as locked.
func (as *AddressSpace) walk(va uintptr, create bool) (*mem.Pa_t, defs.Err_t) {
	table := as.pmap
	for level := uint(3); level >= 1; level-- {
		idx := pmIndex(va, level)
		entry := &table[idx]
		if *entry&mem.PTE_P == 0 {
			if !create {
				return nil, defs.ENOENT
			}
			pa, err := as.frames.Alloc(1)
			if err != 0 {
				return nil, defs.ENOMEM
			}
			child := physPage(pa)
			mem.Zero(child[:])
			*entry = pa | mem.PTE_P | mem.PTE_W | mem.PTE_U
		}
		table = physPage(*entry & mem.PTE_ADDR)
	}
	idx := pmIndex(va, 0)
	return &table[idx], 0
}

// Map installs page-table entries for [va, va+n*PGSIZE) backed by
// frames starting at pa, with the given flags. It fails rather than
// silently replacing an existing mapping in that range. PTE_P is
// always set; PTE_U is forced for User space and PTE_G for Kernel
// space, matching the invariant that kernel mappings are marked
// global and user mappings are marked user-accessible.
func (as *AddressSpace) Map(va uintptr, pa mem.Pa_t, n int, space Space, flags mem.Pa_t) defs.Err_t {
	as.Lock()
	defer as.Unlock()

	for i := 0; i < n; i++ {
		v := va + uintptr(i*mem.PGSIZE)
		pte, err := as.walk(v, false)
		if err == 0 && *pte&mem.PTE_P != 0 {
			return defs.EEXIST
		}
	}

	eff := flags | mem.PTE_P
	if space == User {
		eff |= mem.PTE_U
	} else {
		eff |= mem.PTE_G
	}

	for i := 0; i < n; i++ {
		v := va + uintptr(i*mem.PGSIZE)
		pte, err := as.walk(v, true)
		if err != 0 {
			return err
		}
		*pte = (pa + mem.Pa_t(i*mem.PGSIZE)) | eff
		cpu.Invlpg(v)
	}
	return 0
}

// Unmap tears down n pages of mappings starting at va. If freeFrames
// is true the backing frames are returned to the allocator; callers
// that mapped device or shared memory pass false.
func (as *AddressSpace) Unmap(va uintptr, n int, freeFrames bool) {
	as.Lock()
	defer as.Unlock()

	for i := 0; i < n; i++ {
		v := va + uintptr(i*mem.PGSIZE)
		pte, err := as.walk(v, false)
		if err != 0 || *pte&mem.PTE_P == 0 {
			continue
		}
		if freeFrames {
			as.frames.Free(*pte&mem.PTE_ADDR, 1)
		}
		*pte = 0
		cpu.Invlpg(v)
	}
}

// SetFlags changes the permission bits of an existing n-page mapping
// without touching its physical backing.
func (as *AddressSpace) SetFlags(va uintptr, n int, flags mem.Pa_t) defs.Err_t {
	as.Lock()
	defer as.Unlock()

	for i := 0; i < n; i++ {
		v := va + uintptr(i*mem.PGSIZE)
		pte, err := as.walk(v, false)
		if err != 0 || *pte&mem.PTE_P == 0 {
			return defs.EFAULT
		}
		*pte = (*pte & mem.PTE_ADDR) | flags | mem.PTE_P
		cpu.Invlpg(v)
	}
	return 0
}

// Mapped reports whether va currently has a present mapping, and
// returns its page-table entry (frame address and flags) if so.
func (as *AddressSpace) Mapped(va uintptr) (mem.Pa_t, bool) {
	as.Lock()
	defer as.Unlock()
	pte, err := as.walk(va, false)
	if err != 0 || *pte&mem.PTE_P == 0 {
		return 0, false
	}
	return *pte, true
}
