package vm

import (
	"testing"

	"corvus/defs"
	"corvus/mem"
)

func TestVMATableOverlapRejected(t *testing.T) {
	var table VMATable
	if err := table.AddVMA(&VMA{Start: 0x1000, End: 0x3000, Role: Heap}); err != 0 {
		t.Fatalf("unexpected error adding first VMA: %d", err)
	}
	if err := table.AddVMA(&VMA{Start: 0x2000, End: 0x4000, Role: Heap}); err != defs.EEXIST {
		t.Errorf("expected EEXIST for an overlapping VMA; got %d", err)
	}
	if err := table.AddVMA(&VMA{Start: 0x3000, End: 0x4000, Role: Heap}); err != 0 {
		t.Errorf("expected an adjacent, non-overlapping VMA to be accepted; got %d", err)
	}
}

func TestVMATableFindContaining(t *testing.T) {
	var table VMATable
	code := &VMA{Start: 0x1000, End: 0x2000, Role: Code}
	heap := &VMA{Start: 0x2000, End: 0x3000, Role: Heap}
	table.AddVMA(code)
	table.AddVMA(heap)

	if v, ok := table.FindContaining(0x1500); !ok || v != code {
		t.Errorf("expected 0x1500 to resolve to the code VMA; got %+v ok=%v", v, ok)
	}
	if v, ok := table.FindContaining(0x2500); !ok || v != heap {
		t.Errorf("expected 0x2500 to resolve to the heap VMA; got %+v ok=%v", v, ok)
	}
	if _, ok := table.FindContaining(0x5000); ok {
		t.Error("expected an address outside every VMA to find nothing")
	}
}

func TestGrowStackDownWithinBudget(t *testing.T) {
	var table VMATable
	top := uintptr(0x7ffff000)
	stack := &VMA{Start: top - uintptr(mem.PGSIZE), End: top, Role: Stack}
	table.AddVMA(stack)

	fault := stack.Start - 1 // one byte below the current stack VMA
	if err := table.GrowStackDown(stack, fault); err != 0 {
		t.Fatalf("unexpected error growing the stack: %d", err)
	}
	if stack.Start != fault&^uintptr(mem.PGOFFSET) {
		t.Errorf("expected the stack VMA's Start to move down to cover the fault; got %#x", stack.Start)
	}
}

func TestGrowStackDownAlreadyCovered(t *testing.T) {
	var table VMATable
	stack := &VMA{Start: 0x1000, End: 0x2000, Role: Stack}
	table.AddVMA(stack)

	if err := table.GrowStackDown(stack, 0x1800); err != 0 {
		t.Fatalf("unexpected error: %d", err)
	}
	if stack.Start != 0x1000 {
		t.Errorf("expected no change when the fault is already covered; got %#x", stack.Start)
	}
}

func TestGrowStackDownExceedsBudget(t *testing.T) {
	var table VMATable
	top := uintptr(0x100000000)
	stack := &VMA{Start: top - uintptr(mem.PGSIZE), End: top, Role: Stack}
	table.AddVMA(stack)

	// a fault far enough below top to exceed MaxStackBytes
	fault := top - MaxStackBytes - uintptr(mem.PGSIZE)
	if err := table.GrowStackDown(stack, fault); err != defs.ENOMEM {
		t.Errorf("expected ENOMEM for a grow exceeding the stack budget; got %d", err)
	}
}

func TestGrowStackDownBlockedByNeighbor(t *testing.T) {
	var table VMATable
	neighbor := &VMA{Start: 0x4000, End: 0x5000, Role: Heap}
	stack := &VMA{Start: 0x6000, End: 0x7000, Role: Stack}
	table.AddVMA(neighbor)
	table.AddVMA(stack)

	if err := table.GrowStackDown(stack, 0x4500); err != defs.ENOMEM {
		t.Errorf("expected growth colliding with a neighbor VMA to fail with ENOMEM; got %d", err)
	}
}
