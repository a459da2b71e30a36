package cpu

import "unsafe"

// FuncPC returns the entry address of a non-closure, top-level
// function value. Bring-up code needs this to hand hardware a raw
// code address — an IDT gate's offset field, the SYSCALL MSR's LSTAR
// target — rather than calling the function the normal way. A Go func
// value for a non-closure is a pointer to a single word holding the
// code address, the same assumption Go's own runtime relied on before
// it gained a dedicated ABI query for this; it does not hold for
// closures, which carry captured variables ahead of the code pointer.
func FuncPC(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}
