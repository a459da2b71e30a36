package intr

// trapVectorNum and trapErrCode are written by the assembly stub that
// just took the trap, then read by dispatchTrap: the zero-argument
// global-variable handoff the same context-switch code already uses
// for its assembly-to-Go calls (see kickoffTrampoline), adopted here
// rather than trusting hand-computed frame-pointer offsets for a call
// originating from raw assembly.
var (
	trapVectorNum uint64
	trapErrCode   uint64
)

// activeDispatcher is the table every trap stub's dispatchTrap call
// walks. A single global, not a parameter, for the same reason: the
// stub that calls dispatchTrap cannot pass it a Go-shaped argument.
var activeDispatcher *Dispatcher

// SetActive binds the trap stubs to d. Must be called once during
// bootstrap, after InstallIDT and before interrupts are enabled.
func SetActive(d *Dispatcher) {
	activeDispatcher = d
}

// dispatchTrap is called by every ISR_NOERR/ISR_ERR stub in
// trap_amd64.s with trapVectorNum/trapErrCode already populated. It
// never panics on a nil dispatcher: bring-up code that installs the
// IDT before constructing a Dispatcher would otherwise crash the very
// first stray interrupt.
func dispatchTrap() {
	if activeDispatcher == nil {
		return
	}
	activeDispatcher.Dispatch(uint8(trapVectorNum))
}
