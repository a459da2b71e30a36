package syscallgate

import (
	"unsafe"

	"corvus/defs"
	"corvus/mem"
	"corvus/vm"
)

// CopyFromUser validates that [uva, uva+len(dst)) is entirely mapped
// and readable in as, then copies it into dst. Bounds are validated
// before the copy loop runs, exactly once, rather than discovered
// page-by-page partway through — a partially-completed copy into a
// caller-visible buffer is not an acceptable failure mode.
func CopyFromUser(as *vm.AddressSpace, uva uintptr, dst []uint8) defs.Err_t {
	if !rangeMapped(as, uva, len(dst), false) {
		return defs.EFAULT
	}
	copyUser(as, uva, dst, false)
	return 0
}

// CopyToUser validates that [uva, uva+len(src)) is entirely mapped and
// writable in as, then copies src into it.
func CopyToUser(as *vm.AddressSpace, uva uintptr, src []uint8) defs.Err_t {
	if !rangeMapped(as, uva, len(src), true) {
		return defs.EFAULT
	}
	copyUser(as, uva, src, true)
	return 0
}

// MaxUserStringLen bounds a NUL-terminated string copied in from user
// memory (a path, an argv entry): the same defensive cap
// original_source's user string helpers apply so a bad syscall
// argument can't make the kernel walk off into unmapped memory one
// byte at a time forever.
const MaxUserStringLen = 4096

// ReadUserString copies a NUL-terminated string starting at uva, byte
// by byte so that only the pages the string actually occupies need to
// be mapped, stopping at the terminator or at MaxUserStringLen.
func ReadUserString(as *vm.AddressSpace, uva uintptr) (string, defs.Err_t) {
	out := make([]uint8, 0, 64)
	var b [1]uint8
	for len(out) < MaxUserStringLen {
		if err := CopyFromUser(as, uva+uintptr(len(out)), b[:]); err != 0 {
			return "", err
		}
		if b[0] == 0 {
			return string(out), 0
		}
		out = append(out, b[0])
	}
	return "", defs.ENAMETOOLONG
}

func rangeMapped(as *vm.AddressSpace, uva uintptr, n int, needWrite bool) bool {
	if n == 0 {
		return true
	}
	start := uva &^ uintptr(mem.PGOFFSET)
	end := (uva + uintptr(n) - 1) &^ uintptr(mem.PGOFFSET)
	for p := start; p <= end; p += uintptr(mem.PGSIZE) {
		pte, ok := as.Mapped(p)
		if !ok || (needWrite && pte&mem.PTE_W == 0) {
			return false
		}
	}
	return true
}

// copyUser performs the byte-wise transfer a page at a time, since the
// kernel's identity map of physical memory only gives contiguous access
// within one physical frame at a time. toUser true means buf is the
// source (a kernel-to-user write); false means buf is the destination.
func copyUser(as *vm.AddressSpace, uva uintptr, buf []uint8, toUser bool) {
	done := 0
	for done < len(buf) {
		va := uva + uintptr(done)
		off := int(va & uintptr(mem.PGOFFSET))
		chunk := mem.PGSIZE - off
		if remain := len(buf) - done; chunk > remain {
			chunk = remain
		}

		pte, _ := as.Mapped(va &^ uintptr(mem.PGOFFSET))
		phys := uintptr(pte&mem.PTE_ADDR) + uintptr(off)
		pagePtr := unsafe.Slice((*uint8)(unsafe.Pointer(phys)), chunk)

		if toUser {
			copy(pagePtr, buf[done:done+chunk])
		} else {
			copy(buf[done:done+chunk], pagePtr)
		}
		done += chunk
	}
}
