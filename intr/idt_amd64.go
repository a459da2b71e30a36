package intr

import (
	"unsafe"

	"corvus/cpu"
)

// idtEntry is one 64-bit-mode interrupt gate descriptor.
type idtEntry struct {
	offsetLow  uint16
	selector   uint16
	istFlags   uint16
	offsetMid  uint16
	offsetHigh uint32
	reserved   uint32
}

const (
	gateTypeInterrupt = 0xE // interrupt gate: IF cleared on entry
	gatePresent       = 1 << 7
)

func setGate(e *idtEntry, handler uintptr, codeSelector uint16) {
	*e = idtEntry{
		offsetLow:  uint16(handler),
		selector:   codeSelector,
		istFlags:   uint16(gateTypeInterrupt|gatePresent) << 8,
		offsetMid:  uint16(handler >> 16),
		offsetHigh: uint32(handler >> 32),
	}
}

var idt [maxVectors]idtEntry

type idtPointer struct {
	limit uint16
	base  uint64
}

// The isrXxx functions below have no Go body; each is a small
// assembly stub (trap_amd64.s, generated from the ISR_NOERR/ISR_ERR
// macros) that records its own vector number and calls dispatchTrap.
// cpu.FuncPC reads their entry address for the IDT gate's offset
// field, the same trick gopher-os's gate package hides behind its own
// installIDT.
func isrDivisionByZero()
func isrDebug()
func isrNMI()
func isrBreakpoint()
func isrOverflow()
func isrBoundRange()
func isrInvalidOpcode()
func isrDeviceNotAvailable()
func isrDoubleFault()
func isrInvalidTSS()
func isrSegmentNotPresent()
func isrStackSegmentFault()
func isrGPFault()
func isrPageFault()
func isrX87FP()
func isrAlignmentCheck()
func isrMachineCheck()
func isrSimdFP()
func isrPit()
func isrKeyboard()
func isrCascade()
func isrCom2()
func isrCom1()
func isrRtc()
func isrMouse()
func isrApicTimerVec()
func isrApicErrorVec()
func isrSpuriousVec()

// stubVectors lists every vector this kernel installs a real gate for.
// Extending bring-up to service a new device vector is a one-line
// addition here (plus the matching ISR_* stub in trap_amd64.s); every
// other vector's gate is left absent (present bit clear), matching the
// "all gate entries start non-present" discipline the gopher-os-family
// gate-installation idiom follows.
var stubVectors = []struct {
	vector Vector
	stub   func()
}{
	{DivisionByZero, isrDivisionByZero},
	{Debug, isrDebug},
	{NonMaskableInterrupt, isrNMI},
	{Breakpoint, isrBreakpoint},
	{Overflow, isrOverflow},
	{BoundRangeExceeded, isrBoundRange},
	{InvalidOpcode, isrInvalidOpcode},
	{DeviceNotAvailable, isrDeviceNotAvailable},
	{DoubleFault, isrDoubleFault},
	{InvalidTSS, isrInvalidTSS},
	{SegmentNotPresent, isrSegmentNotPresent},
	{StackSegmentFault, isrStackSegmentFault},
	{GeneralProtectionFault, isrGPFault},
	{PageFault, isrPageFault},
	{X87FloatingPoint, isrX87FP},
	{AlignmentCheck, isrAlignmentCheck},
	{MachineCheck, isrMachineCheck},
	{SimdFloatingPoint, isrSimdFP},
	{Pit, isrPit},
	{Keyboard, isrKeyboard},
	{Cascade, isrCascade},
	{Com2, isrCom2},
	{Com1, isrCom1},
	{Rtc, isrRtc},
	{Mouse, isrMouse},
	{ApicTimer, isrApicTimerVec},
	{ApicError, isrApicErrorVec},
	{Spurious, isrSpuriousVec},
}

// InstallIDT builds the interrupt descriptor table for every vector
// this kernel services and loads it, completing the Bootstrap
// contract's "sets up ... GDT/IDT/TSS" responsibility for the IDT half.
// codeSelector is the GDT selector of the 64-bit kernel code segment
// every gate runs with (installGDT's caller picks this; intr never
// constructs a GDT of its own).
func InstallIDT(codeSelector uint16) {
	for _, sv := range stubVectors {
		setGate(&idt[sv.vector], cpu.FuncPC(sv.stub), codeSelector)
	}
	p := idtPointer{
		limit: uint16(unsafe.Sizeof(idt) - 1),
		base:  uint64(uintptr(unsafe.Pointer(&idt[0]))),
	}
	cpu.Lidt(uintptr(unsafe.Pointer(&p)))
}
