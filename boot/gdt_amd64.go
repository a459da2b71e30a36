package boot

import (
	"unsafe"

	"corvus/cpu"
)

// Segment selectors for the flat GDT installGDT builds. Laid out so
// the SYSCALL/SYSRET MSR convention (STAR, programmed by
// syscallgate.ProgramMSRs) works out of the box: SYSCALL sets
// CS=selKernCode, SS=selKernCode+8; SYSRET sets CS=selUserCode32Base+16
// (with RPL 3 added by hardware), SS=selUserCode32Base+8. That only
// lines up if selKernData == selUserData-8 == selUserCode-16, which is
// exactly the classic null/kernCode/kernData/userData/userCode/TSS
// ordering below.
const (
	selNull     uint16 = 0x00
	selKernCode uint16 = 0x08
	selKernData uint16 = 0x10
	selUserData uint16 = 0x18 | 3 // RPL 3
	selUserCode uint16 = 0x20 | 3 // RPL 3
	selTSS      uint16 = 0x28
)

// gdtEntry is one classic 8-byte segment descriptor. Bring-up only
// ever installs flat (base 0, limit max) segments, so access/flags are
// the only fields that vary between them.
type gdtEntry struct {
	limitLow   uint16
	baseLow    uint16
	baseMid    uint8
	access     uint8
	flagsLimit uint8
	baseHigh   uint8
}

const (
	accPresent   = 1 << 7
	accNotSystem = 1 << 4
	accExec      = 1 << 3
	accRW        = 1 << 1
	dpl3         = 3 << 5

	flagLong = 1 << 5 // long-mode code segment; base/limit ignored by CPU
	flagDB   = 1 << 6 // 32-bit data segment (long mode still honors this for data)
)

func flatEntry(access, flags uint8) gdtEntry {
	return gdtEntry{
		limitLow:   0xffff,
		baseLow:    0,
		baseMid:    0,
		access:     access,
		flagsLimit: flags | 0xf,
		baseHigh:   0,
	}
}

// tssDescriptor is the 16-byte system-segment descriptor a 64-bit TSS
// needs (an ordinary gdtEntry is only 8 bytes; the high 8 bytes here
// carry the upper 32 bits of the TSS's base address).
type tssDescriptor struct {
	low      gdtEntry
	baseHi32 uint32
	reserved uint32
}

// TSS is the subset of the 64-bit task state segment this kernel
// actually uses: RSP0, the stack pointer loaded on any privilege-level
// transition into ring 0. Every other field (IST stack table, I/O
// bitmap) is left zeroed; this kernel never uses interrupt stack
// tables or hardware task switching.
type TSS struct {
	reserved0 uint32
	RSP0      uint64
	rsp1      uint64
	rsp2      uint64
	reserved1 uint64
	ist       [7]uint64
	reserved2 uint64
	reserved3 uint16
	ioMapBase uint16
}

type descriptorPointer struct {
	limit uint16
	base  uint64
}

var (
	gdt [7]gdtEntry // null, kernCode, kernData, userData, userCode, tssLow, tssHigh(as gdtEntry-shaped)
	tss TSS
)

// installGDT builds the flat segment layout plus the single-CPU TSS
// and loads all three (GDT, TR) via LGDT/LTR, completing the
// Bootstrap contract's "sets up ... GDT/IDT/TSS" responsibility for
// the GDT/TSS half. rsp0 is the kernel stack the very first thread
// runs on; later threads update it through SetRSP0Setter on every
// context switch.
func installGDT(rsp0 uintptr) {
	gdt[0] = gdtEntry{}
	gdt[1] = flatEntry(accPresent|accNotSystem|accExec|accRW, flagLong)            // kernel code
	gdt[2] = flatEntry(accPresent|accNotSystem|accRW, flagDB)                      // kernel data
	gdt[3] = flatEntry(accPresent|accNotSystem|accRW|dpl3, flagDB)                 // user data
	gdt[4] = flatEntry(accPresent|accNotSystem|accExec|accRW|dpl3, flagLong)       // user code

	tss = TSS{RSP0: uint64(rsp0)}
	base := uint64(uintptr(unsafe.Pointer(&tss)))
	limit := uint32(unsafe.Sizeof(tss) - 1)
	tssLow := gdtEntry{
		limitLow:   uint16(limit),
		baseLow:    uint16(base),
		baseMid:    uint8(base >> 16),
		access:     accPresent | 0x9, // present, type=0x9 (64-bit TSS, available)
		flagsLimit: uint8(limit>>16) & 0xf,
		baseHigh:   uint8(base >> 24),
	}
	gdt[5] = tssLow
	gdt[6] = gdtEntry{limitLow: uint16(base >> 32), baseLow: uint16(base >> 48)}

	p := descriptorPointer{
		limit: uint16(unsafe.Sizeof(gdt) - 1),
		base:  uint64(uintptr(unsafe.Pointer(&gdt[0]))),
	}
	cpu.Lgdt(uintptr(unsafe.Pointer(&p)))
	cpu.Ltr(selTSS)
}

// setRSP0 updates the live TSS's RSP0 field; installed as the
// scheduler's context-switch hook (sched.SetRSP0Setter) so every
// switch keeps the TSS pointed at the new thread's kernel stack, per
// the switching routine's TSS RSP0 contract.
func setRSP0(rsp0 uintptr) {
	tss.RSP0 = uint64(rsp0)
}
