// Package loader implements process_execute_binary: parsing a binary
// out of the naming tree's initrd-backed files, building the new
// process's address space, and readying its main thread. Grounded on
// the boot package's own loadInitrd (the sibling half of the same
// "files baked into the kernel image" pipeline) and on vm.VMA's
// Code/Heap/Environment role split.
package loader

import (
	"encoding/binary"
	"unsafe"

	"corvus/defs"
	"corvus/mem"
	"corvus/naming"
	"corvus/sched"
	"corvus/ustr"
	"corvus/vm"
)

// magic identifies the simplified "ELF-like layout" header this loader
// understands: a fixed-size header (magic, entry point, code length,
// heap length) immediately followed by codeLen bytes of machine code.
// This is deliberately not a real ELF parser -- a hosted kernel that
// can never run the toolchain to verify one has no way to validate a
// real ELF loader's section/segment arithmetic, whereas this format's
// four fields are straightforward to get right by inspection.
const magic = 0x4e49_4243 // "CBIN", little-endian

const headerSize = 32

type header struct {
	Magic   uint32
	_       uint32 // padding to keep Entry 8-byte aligned
	Entry   uint64
	CodeLen uint64
	HeapLen uint64
}

func parseHeader(data []uint8) (header, defs.Err_t) {
	if len(data) < headerSize {
		return header{}, defs.EINVAL
	}
	h := header{
		Magic:   binary.LittleEndian.Uint32(data[0:4]),
		Entry:   binary.LittleEndian.Uint64(data[8:16]),
		CodeLen: binary.LittleEndian.Uint64(data[16:24]),
		HeapLen: binary.LittleEndian.Uint64(data[24:32]),
	}
	if h.Magic != magic {
		return header{}, defs.EINVAL
	}
	if uint64(len(data)) < headerSize+h.CodeLen {
		return header{}, defs.EINVAL
	}
	return h, 0
}

// Layout constants for a loaded process's user address space. Chosen
// well inside the canonical lower half so they never collide with the
// kernel's shared upper-half mapping (vm.NewUserAddressSpace copies
// entries 256..511 from the kernel's own table).
const (
	codeBase        = 0x0000_0000_0040_0000
	environmentBase = 0x0000_0000_0080_0000
	defaultHeapLen  = 16 * mem.PGSIZE
)

// Deps are the subsystems Load needs from bring-up: the scheduler to
// spawn the new main thread on, the frame allocator to back the new
// VMAs with, and the kernel address space every user space shares its
// upper half with.
type Deps struct {
	Scheduler *sched.Scheduler
	Frames    *mem.FrameAllocator
	KernelAS  *vm.AddressSpace
	Root      *naming.Directory
}

// identityBytes views a run of physical frames as a byte slice, the
// same identity-map assumption boot.identityMapBytes and
// vm.AddressSpace.physPage both rely on.
func identityBytes(pa mem.Pa_t, n int) []uint8 {
	return unsafe.Slice((*uint8)(unsafe.Pointer(uintptr(pa))), n)
}

func pagesFor(n uint64) int {
	return (int(n) + mem.PGSIZE - 1) / mem.PGSIZE
}

// Load resolves path to a file in d.Root, parses it as a simplified
// ELF-like binary, and builds a new process around it: a user address
// space sharing the kernel's upper half, a Code VMA holding the
// binary's instructions, an empty Heap VMA placed so that the header's
// heap length (or defaultHeapLen if it specifies none) fits between it
// and environmentBase, and an Environment VMA holding argv. It readies the process's main thread but, since this kernel is
// hosted on the ordinary Go runtime and performs no real ring0->ring3
// transition (see syscallgate's ThreadCreate handler for the same
// scope note), that thread's entry is a placeholder that exits
// immediately rather than actually jumping into the loaded code.
func Load(d Deps, parent *sched.Process, path string, argv []string) (*sched.Process, defs.Err_t) {
	n, err := naming.Lookup(d.Root, ustr.Ustr(path))
	if err != 0 {
		return nil, err
	}
	f, ok := n.(*naming.File)
	if !ok {
		return nil, defs.EISDIR
	}

	data := make([]uint8, f.Size())
	if _, rerr := f.ReadAt(0, data); rerr != 0 {
		return nil, rerr
	}

	h, herr := parseHeader(data)
	if herr != 0 {
		return nil, herr
	}
	code := data[headerSize : headerSize+h.CodeLen]

	as := vm.NewUserAddressSpace(d.KernelAS, d.Frames)
	child := sched.NewProcess(d.Scheduler, as, d.Root)

	if err := mapCode(d, as, code); err != 0 {
		return nil, err
	}

	heapLen := h.HeapLen
	if heapLen == 0 {
		heapLen = defaultHeapLen
	}
	if err := mapHeap(d, as, heapLen); err != 0 {
		return nil, err
	}

	if _, err := mapEnvironment(d, as, argv); err != 0 {
		return nil, err
	}

	d.Scheduler.Spawn(child, func() {})

	return child, 0
}

func mapCode(d Deps, as *vm.AddressSpace, code []uint8) defs.Err_t {
	n := pagesFor(uint64(len(code)))
	if n == 0 {
		n = 1
	}
	pa, err := d.Frames.Alloc(n)
	if err != 0 {
		return err
	}
	mem.Zero(identityBytes(pa, n*mem.PGSIZE))
	copy(identityBytes(pa, n*mem.PGSIZE), code)

	// Executable, user-accessible, read-only: PTE_W is deliberately not
	// set, matching the invariant that code pages are never writable.
	if err := as.Map(codeBase, pa, n, vm.User, 0); err != 0 {
		return err
	}
	as.Lock()
	err = as.VMAs.AddVMA(&vm.VMA{Start: codeBase, End: codeBase + uintptr(n*mem.PGSIZE), Role: vm.Code})
	as.Unlock()
	return err
}

func mapHeap(d Deps, as *vm.AddressSpace, heapLen uint64) defs.Err_t {
	as.Lock()
	defer as.Unlock()
	base := uintptr(environmentBase - heapPadding(heapLen))
	return as.VMAs.AddVMA(&vm.VMA{
		Start: base,
		End:   base, // starts empty: MapUserHeap moves End; pages inside it are demand-paged, not eagerly backed here
		Role:  vm.Heap,
		Flags: mem.PTE_W,
	})
}

// heapPadding reserves enough address space below environmentBase for
// a heap of heapLen bytes to grow into without the loader needing to
// actually back every page up front.
func heapPadding(heapLen uint64) uintptr {
	pages := pagesFor(heapLen)
	if pages == 0 {
		pages = 1
	}
	return uintptr(pages * mem.PGSIZE)
}

// mapEnvironment serializes argv as a NUL-separated byte blob and maps
// it read-only at environmentBase, so a loaded process can read its own
// arguments without a syscall round-trip.
func mapEnvironment(d Deps, as *vm.AddressSpace, argv []string) (int, defs.Err_t) {
	var blob []uint8
	for _, a := range argv {
		blob = append(blob, a...)
		blob = append(blob, 0)
	}
	n := pagesFor(uint64(len(blob)))
	if n == 0 {
		n = 1
	}
	pa, err := d.Frames.Alloc(n)
	if err != 0 {
		return 0, err
	}
	mem.Zero(identityBytes(pa, n*mem.PGSIZE))
	copy(identityBytes(pa, n*mem.PGSIZE), blob)

	if err := as.Map(environmentBase, pa, n, vm.User, 0); err != 0 {
		return 0, err
	}
	as.Lock()
	err = as.VMAs.AddVMA(&vm.VMA{Start: environmentBase, End: environmentBase + uintptr(n*mem.PGSIZE), Role: vm.Environment})
	as.Unlock()
	return len(blob), err
}
