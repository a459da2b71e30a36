package syscallgate

import (
	"corvus/defs"
	"corvus/mem"
	"corvus/sched"
	"corvus/vm"
)

// userHeapBase is where MapUserHeap creates a Heap VMA for a process
// that has none (loader.Load already gives every process it loads one,
// just below its Environment VMA); chosen well clear of the Code VMA
// the loader places at the bottom of the user range.
const userHeapBase = 0x0000_1000_0000_0000

func registerMemorySyscalls(g *Gate, d Deps) {
	g.Register(MapMemory, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		va := args.A0
		n := int(args.A1)
		writable := args.A2 != 0
		if n <= 0 {
			return 0, defs.EINVAL
		}
		pa, err := d.Frames.Alloc(n)
		if err != 0 {
			return 0, err
		}
		flags := mem.Pa_t(0)
		if writable {
			flags |= mem.PTE_W
		}
		if err := proc.Space.Map(va, pa, n, vm.User, flags); err != 0 {
			d.Frames.Free(pa, n)
			return 0, err
		}
		return int64(va), 0
	})

	g.Register(MapUserHeap, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		grow := int64(args.A0)
		proc.Space.Lock()
		defer proc.Space.Unlock()

		v, ok := proc.Space.VMAs.FindVMA(vm.Heap)
		if !ok {
			v = &vm.VMA{
				Start: userHeapBase,
				End:   userHeapBase,
				Role:  vm.Heap,
				Flags: mem.PTE_W,
			}
			if err := proc.Space.VMAs.AddVMA(v); err != 0 {
				return 0, err
			}
		}
		if grow > 0 {
			proc.Space.VMAs.UpdateVMA(v, func(vma *vm.VMA) {
				vma.End += uintptr(grow)
			})
		}
		return int64(v.End), 0
	})
}
