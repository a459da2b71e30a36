package mem

import (
	"sync"
	"unsafe"

	"corvus/defs"
	"corvus/util"
)

// growHeap asks h.grow for enough frames to cover at least need bytes
// and appends them to the free list as one new block. It relies on the
// same identity-mapped-physical-memory assumption vm.AddressSpace's
// page-table walk makes: a physical address handed back by grow is
// also a valid virtual pointer. Must be called with h.mu held.
func (h *Heap) growHeap(need int) bool {
	if h.grow == nil {
		return false
	}
	pages := util.Roundup(need, PGSIZE) / PGSIZE
	pa, err := h.grow(pages)
	if err != 0 {
		return false
	}
	hdr := (*blockHeader)(unsafe.Pointer(uintptr(pa)))
	hdr.size = pages * PGSIZE
	hdr.used = false
	hdr.next = nil

	tail := h.blocks
	for tail.next != nil {
		tail = tail.next
	}
	tail.next = hdr
	return true
}

// blockHeader sits immediately before every block the heap hands out,
// free or allocated. size includes the header itself; next chains every
// block, free or allocated, in list order (address order within one
// region; regions added by growHeap are appended at the tail).
type blockHeader struct {
	size int
	used bool
	next *blockHeader
}

const headerSize = int(unsafe.Sizeof(blockHeader{}))

// Heap is a locked, intrusive, first-fit free-list allocator over a
// contiguous run of frames obtained from a FrameAllocator. It is the
// kernel's global allocator after bring-up; driver code running from
// interrupt context must call IsLocked and defer its allocation if the
// heap is currently held elsewhere.
type Heap struct {
	mu      sync.Mutex
	blocks  *blockHeader
	base    uintptr
	size    int
	grow    func(pages int) (Pa_t, defs.Err_t)
	pgshift uint
}

// NewHeap initializes a heap over backing, a byte slice covering frames
// already mapped by the caller (typically the bootstrap's identity
// mapping of a just-allocated frame run). grow, if non-nil, is invoked
// to request more backing frames when the initial region is exhausted;
// a nil grow means the heap is fixed-size.
func NewHeap(backing []uint8, grow func(pages int) (Pa_t, defs.Err_t)) *Heap {
	if len(backing) < headerSize {
		panic("mem: heap region too small")
	}
	h := &Heap{grow: grow}
	h.base = uintptr(unsafe.Pointer(&backing[0]))
	h.size = len(backing)
	hdr := (*blockHeader)(unsafe.Pointer(&backing[0]))
	hdr.size = len(backing)
	hdr.used = false
	hdr.next = nil
	h.blocks = hdr
	return h
}

// IsLocked reports whether another caller currently holds the heap
// lock. Interrupt-context drivers must check this before allocating
// and defer the allocation to a safer context if true.
func (h *Heap) IsLocked() bool {
	if h.mu.TryLock() {
		h.mu.Unlock()
		return false
	}
	return true
}

const align = 16

// Alloc reserves at least n bytes and returns a slice over the usable
// region, or nil with ENOMEM if no block (after growth attempts) is
// large enough.
func (h *Heap) Alloc(n int) ([]uint8, defs.Err_t) {
	if n <= 0 {
		panic("mem: bad alloc size")
	}
	need := util.Roundup(n+headerSize, align)

	h.mu.Lock()
	defer h.mu.Unlock()

	blk := h.findFit(need)
	if blk == nil && h.growHeap(need) {
		blk = h.findFit(need)
	}
	if blk == nil {
		return nil, defs.ENOMEM
	}
	h.split(blk, need)
	blk.used = true
	return h.payload(blk), 0
}

func (h *Heap) findFit(need int) *blockHeader {
	var prev *blockHeader
	cur := h.blocks
	for cur != nil {
		if !cur.used && cur.size >= need {
			return cur
		}
		prev = cur
		cur = cur.next
	}
	_ = prev
	return nil
}

// split carves a `need`-byte block out of blk in place, leaving the
// remainder (if large enough to hold a header) as a new free block
// immediately after it in the list.
func (h *Heap) split(blk *blockHeader, need int) {
	leftover := blk.size - need
	if leftover <= headerSize {
		return
	}
	rest := (*blockHeader)(unsafe.Pointer(uintptr(unsafe.Pointer(blk)) + uintptr(need)))
	rest.size = leftover
	rest.used = false
	rest.next = blk.next
	blk.size = need
	blk.next = rest
}

func (h *Heap) payload(blk *blockHeader) []uint8 {
	p := unsafe.Pointer(uintptr(unsafe.Pointer(blk)) + uintptr(headerSize))
	n := blk.size - headerSize
	return unsafe.Slice((*uint8)(p), n)
}

// Free returns a block previously obtained from Alloc and coalesces it
// with any adjacent free neighbor. Passing a slice not obtained from
// this heap's Alloc is undefined — callers never do so in practice
// because the header pointer is derived from the slice itself.
func (h *Heap) Free(buf []uint8) {
	if len(buf) == 0 {
		return
	}
	hdr := (*blockHeader)(unsafe.Pointer(uintptr(unsafe.Pointer(&buf[0])) - uintptr(headerSize)))

	h.mu.Lock()
	defer h.mu.Unlock()
	if !hdr.used {
		panic("mem: double free")
	}
	hdr.used = false
	h.coalesce()
}

// coalesce walks the block list once, merging adjacent free blocks.
// Within one region, blocks are contiguous in address order by
// construction (split always inserts the remainder immediately after
// its parent); list neighbours from different regions are only merged
// when the address check below finds them touching.
func (h *Heap) coalesce() {
	cur := h.blocks
	for cur != nil && cur.next != nil {
		adjacent := uintptr(unsafe.Pointer(cur))+uintptr(cur.size) == uintptr(unsafe.Pointer(cur.next))
		if !cur.used && !cur.next.used && adjacent {
			cur.size += cur.next.size
			cur.next = cur.next.next
			continue
		}
		cur = cur.next
	}
}

// Stats reports the number of free and used bytes currently tracked,
// for diagnostics.
func (h *Heap) Stats() (freeBytes, usedBytes int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cur := h.blocks; cur != nil; cur = cur.next {
		if cur.used {
			usedBytes += cur.size
		} else {
			freeBytes += cur.size
		}
	}
	return
}
