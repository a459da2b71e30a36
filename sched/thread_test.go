package sched

import (
	"testing"
	"unsafe"
)

func TestNewThreadPreparesSwitchFrame(t *testing.T) {
	proc := &Process{}
	th := NewThread(proc, func() {})

	words := (*[initStackEntries]uint64)(unsafe.Pointer(th.savedRSP))
	if words[0] != 0x202 {
		t.Errorf("expected the synthetic frame's rflags word to be 0x202 (IF set); got %#x", words[0])
	}
	for i := 1; i < initStackEntries-1; i++ {
		if words[i] != 0 {
			t.Errorf("expected callee-saved register slot %d to start zeroed; got %#x", i, words[i])
		}
	}
	if words[initStackEntries-1] != uint64(threadBootstrapPC()) {
		t.Errorf("expected the synthetic return address to be threadBootstrapPC; got %#x", words[initStackEntries-1])
	}
}

func TestNewThreadAllocatesDistinctTids(t *testing.T) {
	proc := &Process{}
	a := NewThread(proc, func() {})
	b := NewThread(proc, func() {})
	if a.ID == b.ID {
		t.Errorf("expected distinct thread IDs; both got %d", a.ID)
	}
}

func TestThreadIDs(t *testing.T) {
	proc := &Process{ID: 7}
	th := NewThread(proc, func() {})
	pid, tid := th.ids()
	if pid != 7 || tid != th.ID {
		t.Errorf("expected ids() to report (7, %d); got (%d, %d)", th.ID, pid, tid)
	}
}
