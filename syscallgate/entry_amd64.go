package syscallgate

import (
	"corvus/cpu"
	"corvus/defs"
	"corvus/sched"
)

// The SYSCALL/SYSRET fast entry mechanism (Intel SDM vol. 2B, SYSCALL
// / SYSRET; AMD64 APM vol. 2 §6.1.1). STAR/LSTAR/FMASK/EFER.SCE are
// the four MSRs that enable it; syscallEntryStub is the code LSTAR
// points at.
const (
	msrEFER  = 0xC0000080
	msrSTAR  = 0xC0000081
	msrLSTAR = 0xC0000082
	msrFMASK = 0xC0000084

	eferSCE = 1 << 0 // SYSCALL/SYSRET enable
)

// syscallEntryStub has no Go body; its implementation is in
// entry_amd64.s. The CPU jumps here directly on SYSCALL with RCX/R11
// already holding the return RIP/RFLAGS SYSRET will restore.
func syscallEntryStub()

// ProgramMSRs enables SYSCALL/SYSRET and points it at this kernel's
// entry stub, completing the syscall gate's half of the Bootstrap
// contract's "owns ... syscall MSRs" responsibility. kernCodeSel and
// kernDataSel must be the selectors installGDT assigned to the flat
// kernel code/data segments: STAR's layout requires
// kernDataSel == kernCodeSel+8 (the SYSCALL side) and, for SYSRET,
// requires the GDT's user segments to sit at kernDataSel+8/+16 (see
// installGDT's selector-layout comment) for the hardware-computed
// SYSRET selectors to land on the right segments.
func ProgramMSRs(kernCodeSel, kernDataSel uint16) {
	star := uint64(kernDataSel) << 48 // SYSRET base: +8=userData, +16=userCode (+RPL3)
	star |= uint64(kernCodeSel) << 32 // SYSCALL: CS=kernCodeSel, SS=kernCodeSel+8
	cpu.Wrmsr(msrSTAR, star)
	cpu.Wrmsr(msrLSTAR, uint64(cpu.FuncPC(syscallEntryStub)))
	cpu.Wrmsr(msrFMASK, 0x200) // clear IF on entry; stub re-enables once on the kernel stack

	efer := cpu.Rdmsr(msrEFER)
	cpu.Wrmsr(msrEFER, efer|eferSCE)
}

// kernelEntryRSP is the kernel stack the entry stub switches onto,
// mirroring the TSS RSP0 field a hardware trap would use automatically
// (SYSCALL, unlike an interrupt gate, does not switch stacks on its
// own). Updated on every context switch via SetKernelStack, the same
// one-time wiring sched.SetRSP0Setter already uses for the TSS.
var kernelEntryRSP uint64

// SetKernelStack installs the kernel stack the next SYSCALL should
// land on. Call this from the same hook that updates the TSS's RSP0
// (see boot.Start), since both must always name the current thread's
// kernel stack.
func SetKernelStack(rsp0 uintptr) {
	kernelEntryRSP = uint64(rsp0)
}

// activeGate is the dispatch table dispatchEntry calls into. A
// package-level global, not a parameter, since the entry stub that
// calls dispatchEntry cannot pass it a Go-shaped argument (see the
// trapVectorNum handoff in the intr package for the same pattern).
var activeGate *Gate

// SetActive binds the SYSCALL entry stub to g. Must be called once
// during bootstrap, after RegisterAll, before EFER.SCE is set.
func SetActive(g *Gate) {
	activeGate = g
}

// entryNum/entryA0-5 are written by syscallEntryStub from the user's
// argument registers before it calls dispatchEntry; entryResult is
// written by dispatchEntry and read back by the stub before SYSRET.
var (
	entryNum                                             uint64
	entryA0, entryA1, entryA2, entryA3, entryA4, entryA5 uint64
	entryResult                                          int64
	entryUserRSP                                         uint64
)

// dispatchEntry is called by syscallEntryStub once it has swapped onto
// the kernel stack and saved the caller's argument registers into the
// entryA* globals above. It never returns a value through the normal
// Go ABI -- it writes entryResult, which the stub moves into RAX
// before SYSRET -- the same zero-argument assembly-call convention
// sched.kickoffTrampoline already relies on, adopted here because a
// call originating from raw assembly cannot be trusted with
// frame-pointer-relative arguments without a compiler to verify them.
func dispatchEntry() {
	if activeGate == nil {
		entryResult = int64(defs.ENOTSUP)
		return
	}
	th := sched.Current()
	if th == nil {
		entryResult = int64(defs.ESRCH)
		return
	}
	args := Args{
		A0: uintptr(entryA0), A1: uintptr(entryA1), A2: uintptr(entryA2),
		A3: uintptr(entryA3), A4: uintptr(entryA4), A5: uintptr(entryA5),
	}
	entryResult = activeGate.Dispatch(Number(entryNum), th.Process, th, args)
}
