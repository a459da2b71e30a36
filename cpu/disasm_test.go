package cpu

import (
	"strings"
	"testing"
)

func TestDescribeFaultDecodesKnownInstruction(t *testing.T) {
	// 0xc3 is RET with no prefixes at any offset.
	code := []uint8{0x90, 0xc3}
	got := DescribeFault(code, 1)
	if !strings.Contains(got, "ret") {
		t.Errorf("expected a description mentioning ret; got %q", got)
	}
}

func TestDescribeFaultOffsetOutOfRange(t *testing.T) {
	code := []uint8{0x90}
	specs := []int{-1, 1, 5}
	for _, off := range specs {
		if got := DescribeFault(code, off); got != "<instruction bytes unavailable>" {
			t.Errorf("offset %d: expected the out-of-range placeholder; got %q", off, got)
		}
	}
}

func TestDescribeFaultUndecodable(t *testing.T) {
	// 0x0f 0xff is not a valid x86 opcode.
	code := []uint8{0x0f, 0xff, 0xff, 0xff}
	got := DescribeFault(code, 0)
	if !strings.HasPrefix(got, "<undecodable") {
		t.Errorf("expected an undecodable placeholder; got %q", got)
	}
}
