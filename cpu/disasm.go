package cpu

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// DescribeFault decodes the instruction at code[ripOff:] and formats it
// for the fatal-exception path: printing what instruction actually
// faulted is far more useful on a serial console than a bare RIP value.
func DescribeFault(code []uint8, ripOff int) string {
	if ripOff < 0 || ripOff >= len(code) {
		return "<instruction bytes unavailable>"
	}
	inst, err := x86asm.Decode(code[ripOff:], 64)
	if err != nil {
		return fmt.Sprintf("<undecodable: %v>", err)
	}
	return x86asm.GNUSyntax(inst, 0, nil)
}
