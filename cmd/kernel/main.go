// Command kernel is the entry point a minimal assembly loader jumps
// into once the CPU is in 64-bit mode with paging on and a stack set
// up. Styled after gopher-os's kernel.Kmain: a single exported
// function the loader calls with the loader-provided info pointer,
// which never returns. Everything privileged past that point — the
// kernel's own GDT, IDT, TSS, and SYSCALL MSRs — is boot.Start's
// responsibility, not the loader's.
package main

import (
	"corvus/boot"
	"corvus/cpu"
)

// Kmain is invoked by the loader's assembly stub with the physical
// address of the loader-provided info block, already parsed into a
// *boot.Info by the stub's Go-side trampoline before the jump into
// here. It is not expected to return: boot.Start panics if the
// scheduler's Start ever returns, and Kmain halts the CPU in a loop if
// boot.Start somehow does.
//
//go:noinline
func Kmain(info *boot.Info) {
	boot.Start(info)
	for {
		cpu.Halt()
	}
}

// main exists so `go build ./cmd/kernel` type-checks the whole program;
// a real image is linked directly against Kmain by the boot stub and
// never calls main.
func main() {
	Kmain(&boot.Info{})
}
