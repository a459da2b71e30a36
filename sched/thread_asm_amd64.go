package sched

// threadStart performs the very first switch of the whole kernel: there
// is no prior thread's register file to save, so it only loads newRSP
// and returns into whatever frame prepareStack built there.
func threadStart(newRSP uintptr)

// threadSwitch saves the calling thread's callee-saved registers onto
// its own stack, writes the resulting stack pointer to *curRSP, then
// loads nextRSP and returns into the frame found there: either another
// thread's previously saved switch-out point, or a freshly prepared
// thread's bootstrap frame.
func threadSwitch(curRSP *uintptr, nextRSP uintptr)

// threadBootstrapPC returns the address threadStart/threadSwitch place
// in a freshly prepared stack's return slot (see Thread.prepareStack):
// a small assembly stub that calls kickoffTrampoline with interrupts
// enabled.
func threadBootstrapPC() uintptr
