package naming

import (
	"sync"

	"corvus/defs"
	"corvus/irqlock"
)

// pipeCapacity bounds a pipe's byte queue, matching circbuf.Circbuf_t's
// single-page buffer.
const pipeCapacity = 4096

// Pipe is a bounded byte queue with a pair of wait queues: readers
// block on an empty pipe, writers block on a full one. Closing the
// last writer wakes all readers so they observe EOF (a 0-byte read,
// not an error); closing the last reader makes further writes fail
// with EPIPE rather than silently discarding them.
type Pipe struct {
	mu   sync.Mutex
	buf  [pipeCapacity]uint8
	head int
	tail int
	n    int

	readers int
	writers int

	readWait  irqlock.WaitQueue
	writeWait irqlock.WaitQueue
}

// NewPipe creates an empty pipe with no readers or writers attached
// yet; OpenRead/OpenWrite register handles as they're opened.
func NewPipe() *Pipe {
	return &Pipe{}
}

// Kind implements Named.
func (p *Pipe) Kind() Kind { return PipeKind }

// OpenRead registers a new reader handle.
func (p *Pipe) OpenRead() {
	p.mu.Lock()
	p.readers++
	p.mu.Unlock()
}

// OpenWrite registers a new writer handle.
func (p *Pipe) OpenWrite() {
	p.mu.Lock()
	p.writers++
	p.mu.Unlock()
}

// CloseRead drops a reader handle; if it was the last one, blocked
// writers are woken so their next write observes EPIPE.
func (p *Pipe) CloseRead() {
	p.mu.Lock()
	p.readers--
	last := p.readers == 0
	p.mu.Unlock()
	if last {
		p.writeWait.NotifyAll()
	}
}

// CloseWrite drops a writer handle; if it was the last one, blocked
// readers are woken to observe EOF.
func (p *Pipe) CloseWrite() {
	p.mu.Lock()
	p.writers--
	last := p.writers == 0
	p.mu.Unlock()
	if last {
		p.readWait.NotifyAll()
	}
}

// Read blocks while the pipe is empty and has at least one writer
// still open; it returns 0 once every writer has closed, and EPIPE
// never applies to readers (that is what CloseRead's writer wake-up
// guards against instead).
func (p *Pipe) Read(buf []uint8) (int, defs.Err_t) {
	p.readWait.Wait(func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.n > 0 || p.writers == 0
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.n == 0 {
		return 0, 0
	}
	cnt := 0
	for cnt < len(buf) && p.n > 0 {
		buf[cnt] = p.buf[p.tail]
		p.tail = (p.tail + 1) % pipeCapacity
		p.n--
		cnt++
	}
	p.writeWait.NotifyOne()
	return cnt, 0
}

// Write blocks while the pipe is full and at least one reader remains
// open; it fails with EPIPE as soon as the last reader has closed.
func (p *Pipe) Write(buf []uint8) (int, defs.Err_t) {
	p.readWait.NotifyOne() // cheap nudge; a reader is also woken after each chunk below

	written := 0
	for written < len(buf) {
		var pipeBroken bool
		p.writeWait.Wait(func() bool {
			p.mu.Lock()
			defer p.mu.Unlock()
			pipeBroken = p.readers == 0
			return p.n < pipeCapacity || pipeBroken
		})
		p.mu.Lock()
		if p.readers == 0 {
			p.mu.Unlock()
			return written, defs.EPIPE
		}
		for written < len(buf) && p.n < pipeCapacity {
			p.buf[p.head] = buf[written]
			p.head = (p.head + 1) % pipeCapacity
			p.n++
			written++
		}
		p.mu.Unlock()
		p.readWait.NotifyOne()
	}
	return written, 0
}
