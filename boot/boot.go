// Package boot holds the loader-provided bring-up payload and the
// bootstrap sequence that turns it into a running kernel: frame
// allocator, kernel heap, address space, interrupt dispatcher,
// scheduler, and the first kernel thread. Styled after gopher-os's
// kmain.Kmain: a short, strictly sequential Init chain that panics on
// any fatal failure rather than trying to limp onward.
package boot

import (
	"fmt"
	"sync/atomic"

	"corvus/apic"
	"corvus/cpu"
	"corvus/defs"
	"corvus/intr"
	"corvus/loader"
	"corvus/mem"
	"corvus/naming"
	"corvus/sched"
	"corvus/syscallgate"
	"corvus/vm"
)

// FramebufferInfo describes the linear framebuffer the loader mapped,
// matching the External Interfaces boot-entry description.
type FramebufferInfo struct {
	PhysAddr uintptr
	Pitch    int
	Width    int
	Height   int
	BPP      int
}

// Info is the payload the loader hands the kernel entry point: the
// framebuffer descriptor, the typed physical memory map, the ACPI
// RSDP, and the initrd.
type Info struct {
	Framebuffer FramebufferInfo
	MemoryMap   []mem.Frame
	RSDP        uintptr
	Initrd      map[string][]uint8
}

// Kernel holds every subsystem bring-up constructs, so later stages
// (syscall registration, the loader, diagnostics) have one place to
// reach all of them from.
type Kernel struct {
	Frames     *mem.FrameAllocator
	Heap       *mem.Heap
	KernelAS   *vm.AddressSpace
	Dispatcher *intr.Dispatcher
	APIC       apic.Controller
	Scheduler  *sched.Scheduler
	Root       *naming.Directory
	Gate       *syscallgate.Gate
}

const heapPages = 256 // 1 MiB kernel heap carved out at bring-up

var systimeMs int64

// Start runs the bootstrap sequence described by info and never
// returns: the last thing it does is hand control to the scheduler,
// which busy-waits for a thread to become ready once there is nothing
// else runnable; it does not halt the CPU while it waits.
func Start(info *Info) {
	k := &Kernel{}

	k.Frames = mem.NewFrameAllocator(info.MemoryMap)

	heapBase, err := k.Frames.Alloc(heapPages)
	if err != 0 {
		panic("boot: out of memory reserving the kernel heap")
	}
	heapBacking := identityMapBytes(heapBase, heapPages*mem.PGSIZE)
	k.Heap = mem.NewHeap(heapBacking, func(pages int) (mem.Pa_t, defs.Err_t) {
		return k.Frames.Alloc(pages)
	})

	k.KernelAS = vm.NewKernelAddressSpace(k.Frames)
	cpu.LoadCR3(uintptr(k.KernelAS.PhysRoot()))

	installGDT(0)
	intr.InstallIDT(selKernCode)

	k.APIC = apic.NewNullAPIC()
	k.Dispatcher = intr.NewDispatcher(k.APIC)
	intr.SetActive(k.Dispatcher)
	faultHandler := &pageFaultBridge{k: k}
	excHandler := intr.NewExceptionHandler(&noUserContext{}, faultHandler)
	intr.RegisterExceptions(k.Dispatcher, excHandler)

	k.Scheduler = sched.NewScheduler(func() int64 { return atomic.LoadInt64(&systimeMs) })
	sched.SetRSP0Setter(func(rsp0 uintptr) {
		setRSP0(rsp0)
		syscallgate.SetKernelStack(rsp0)
	})
	k.Dispatcher.Assign(intr.ApicTimer, &tickHandler{k: k})
	k.APIC.StartTicker(tickMs)
	k.APIC.Allow(uint8(intr.ApicTimer))

	k.Root = naming.NewRootDirectory()
	loadInitrd(k.Root, info.Initrd)

	ldr := loader.Deps{Scheduler: k.Scheduler, Frames: k.Frames, KernelAS: k.KernelAS, Root: k.Root}
	k.Gate = syscallgate.NewGate()
	syscallgate.RegisterAll(k.Gate, syscallgate.Deps{
		Scheduler: k.Scheduler,
		Frames:    k.Frames,
		SystimeMs: func() int64 { return atomic.LoadInt64(&systimeMs) },
		Execute: func(parent *sched.Process, path string, argv []string) (*sched.Process, defs.Err_t) {
			return loader.Load(ldr, parent, path, argv)
		},
	})
	syscallgate.SetActive(k.Gate)
	syscallgate.ProgramMSRs(selKernCode, selKernData)

	fmt.Printf("boot: frames=%d pages heap=%d pages online\n", k.Frames.FreePages(), heapPages)

	idle := sched.NewProcess(k.Scheduler, k.KernelAS, k.Root)

	// The initrd's own init binary, if present, becomes the first real
	// user process; its absence (a kernel built without one, or used
	// only for the naming-service test tree) is not a boot failure.
	if _, err := loadInit(ldr, idle); err != 0 {
		fmt.Printf("boot: no init binary loaded (%v)\n", err)
	}

	bootThread := k.Scheduler.Spawn(idle, func() {
		fmt.Println("online")
		for {
			k.Scheduler.Sleep(1000)
		}
	})

	k.Scheduler.Start(bootThread)
	panic("boot: scheduler.Start returned")
}
