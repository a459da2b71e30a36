package mem

import (
	"testing"
	"unsafe"

	"corvus/defs"
)

func newTestHeap(t *testing.T, size int) *Heap {
	t.Helper()
	backing := make([]uint8, size)
	return NewHeap(backing, nil)
}

func TestHeapAllocWriteFree(t *testing.T) {
	h := newTestHeap(t, 4096)

	buf, err := h.Alloc(64)
	if err != 0 {
		t.Fatalf("unexpected alloc error: %d", err)
	}
	if len(buf) < 64 {
		t.Fatalf("expected at least 64 usable bytes; got %d", len(buf))
	}
	for i := range buf {
		buf[i] = 0xAB
	}
	h.Free(buf)

	free, used := h.Stats()
	if used != 0 {
		t.Errorf("expected 0 used bytes after freeing the only block; got %d", used)
	}
	if free == 0 {
		t.Error("expected the freed block to be merged back into the free list")
	}
}

func TestHeapSplitReusesRemainder(t *testing.T) {
	h := newTestHeap(t, 4096)

	a, err := h.Alloc(32)
	if err != 0 {
		t.Fatalf("unexpected alloc error: %d", err)
	}
	_, usedAfterA := h.Stats()

	b, err := h.Alloc(32)
	if err != 0 {
		t.Fatalf("unexpected alloc error: %d", err)
	}
	_, usedAfterB := h.Stats()
	if usedAfterB <= usedAfterA {
		t.Errorf("expected used bytes to grow after a second alloc: %d -> %d", usedAfterA, usedAfterB)
	}

	h.Free(a)
	h.Free(b)
	free, used := h.Stats()
	if used != 0 {
		t.Errorf("expected 0 used bytes after freeing both blocks; got %d", used)
	}
	if free != 4096 {
		t.Errorf("expected the whole region to coalesce back to %d bytes; got %d", 4096, free)
	}
}

func TestHeapExhaustion(t *testing.T) {
	h := newTestHeap(t, 128)
	if _, err := h.Alloc(4096); err == 0 {
		t.Error("expected an over-large alloc to fail with ENOMEM")
	}
}

func TestHeapGrowsOnExhaustion(t *testing.T) {
	h := newTestHeap(t, 128)

	extra := make([]uint8, 2*PGSIZE)
	grown := false
	h.grow = func(pages int) (Pa_t, defs.Err_t) {
		grown = true
		return Pa_t(uintptr(unsafe.Pointer(&extra[0]))), 0
	}

	buf, err := h.Alloc(4096)
	if err != 0 {
		t.Fatalf("expected growth to satisfy the alloc; got err=%d", err)
	}
	if !grown {
		t.Error("expected the grow callback to have been invoked")
	}
	if len(buf) < 4096 {
		t.Errorf("expected at least 4096 usable bytes from the grown region; got %d", len(buf))
	}
}

func TestHeapGrowFailurePropagatesENOMEM(t *testing.T) {
	h := newTestHeap(t, 128)
	h.grow = func(pages int) (Pa_t, defs.Err_t) {
		return 0, defs.ENOMEM
	}
	if _, err := h.Alloc(4096); err != defs.ENOMEM {
		t.Errorf("expected ENOMEM when growth itself fails; got %d", err)
	}
}

func TestHeapDoubleFreePanics(t *testing.T) {
	h := newTestHeap(t, 4096)
	buf, _ := h.Alloc(16)
	h.Free(buf)
	defer func() {
		if recover() == nil {
			t.Error("expected a double Free to panic")
		}
	}()
	h.Free(buf)
}

func TestHeapIsLocked(t *testing.T) {
	h := newTestHeap(t, 4096)
	if h.IsLocked() {
		t.Fatal("expected an idle heap to report unlocked")
	}
	h.mu.Lock()
	if !h.IsLocked() {
		t.Error("expected a held heap lock to report locked")
	}
	h.mu.Unlock()
}
