// Package cpu declares the privileged, assembly-backed primitives the
// kernel core needs to own the CPU: interrupt masking, the TLB, control
// registers, and model-specific registers. Each function below has no
// Go body; its implementation lives in cpu_amd64.s, compiled by the Go
// assembler the way gopher-os's kernel/cpu/cpu_amd64.go declares
// EnableInterrupts/Halt/FlushTLBEntry.
package cpu

// DisableInterrupts clears the CPU's interrupt flag and returns whether
// interrupts were enabled beforehand, so the caller can restore the
// prior state (used by the IRQ-save spinlock).
func DisableInterrupts() (wasEnabled bool)

// EnableInterrupts sets the CPU's interrupt flag unconditionally.
func EnableInterrupts()

// RestoreInterrupts sets the interrupt flag to the given state,
// restoring what a matching DisableInterrupts observed.
func RestoreInterrupts(enabled bool)

// Halt stops instruction execution until the next interrupt arrives.
func Halt()

// Pause issues the PAUSE instruction, a spin-wait hint for the CPU's
// memory ordering machinery.
func Pause()

// Invlpg flushes a single TLB entry for the given virtual address.
func Invlpg(vaddr uintptr)

// LoadCR3 installs pmapPhys as the root of the active page-table
// hierarchy, flushing all non-global TLB entries.
func LoadCR3(pmapPhys uintptr)

// ReadCR3 returns the physical address of the currently active
// top-level page table.
func ReadCR3() uintptr

// ReadCR2 returns the faulting address recorded by the last page
// fault, as set by the CPU before the exception handler runs.
func ReadCR2() uintptr

// Rdmsr reads a model-specific register.
func Rdmsr(reg uint32) uint64

// Wrmsr writes a model-specific register.
func Wrmsr(reg uint32, val uint64)

// Lgdt loads the global descriptor table from the given descriptor
// (limit:base pair, already encoded by the caller).
func Lgdt(gdtr uintptr)

// Lidt loads the interrupt descriptor table.
func Lidt(idtr uintptr)

// Ltr loads the task register with the given segment selector,
// activating the TSS used for RSP0 on privilege-level transitions.
func Ltr(selector uint16)

// Rdtsc reads the CPU's timestamp counter.
func Rdtsc() uint64

// CurrentRSP returns the calling goroutine's current stack pointer.
// Used only by the exception handler's debug/breakpoint diagnostic;
// never by the page-fault fast path.
func CurrentRSP() uintptr
