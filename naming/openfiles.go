package naming

import (
	"sync"

	"corvus/defs"
)

// OpenedObject is one open handle onto a Named object: its own cursor
// and reference count, shared by every descriptor dup'd from the same
// open call. Per-file position lives here rather than on the
// descriptor, so dup'd descriptors share a cursor exactly as
// open_with_fixed_fd semantics require.
type OpenedObject struct {
	mu   sync.Mutex
	obj  Named
	pos  int64
	opts defs.OpenOptions
	refs int
}

func newOpenedObject(obj Named, opts defs.OpenOptions) *OpenedObject {
	oo := &OpenedObject{obj: obj, opts: opts, refs: 1}
	switch v := obj.(type) {
	case *Pipe:
		if opts&defs.O_READ != 0 {
			v.OpenRead()
		}
		if opts&defs.O_WRITE != 0 {
			v.OpenWrite()
		}
	case *PseudoFile:
		v.open()
	}
	return oo
}

// Read reads from the object at the handle's current cursor, advancing
// it by the number of bytes actually transferred.
func (oo *OpenedObject) Read(buf []uint8) (int, defs.Err_t) {
	switch v := oo.obj.(type) {
	case *File:
		oo.mu.Lock()
		defer oo.mu.Unlock()
		n, err := v.ReadAt(oo.pos, buf)
		oo.pos += int64(n)
		return n, err
	case *Pipe:
		return v.Read(buf)
	case *PseudoFile:
		return v.read(buf)
	case *Directory:
		return 0, defs.EISDIR
	default:
		return 0, defs.ENOTSUP
	}
}

// Write writes to the object at the handle's current cursor, advancing
// it by the number of bytes actually transferred.
func (oo *OpenedObject) Write(buf []uint8) (int, defs.Err_t) {
	if oo.opts&defs.O_READ != 0 && oo.opts&defs.O_WRITE == 0 {
		return 0, defs.EACCES
	}
	switch v := oo.obj.(type) {
	case *File:
		oo.mu.Lock()
		defer oo.mu.Unlock()
		n, err := v.WriteAt(oo.pos, buf)
		oo.pos += int64(n)
		return n, err
	case *Pipe:
		return v.Write(buf)
	case *PseudoFile:
		return v.write(buf)
	case *Directory:
		return 0, defs.EISDIR
	default:
		return 0, defs.ENOTSUP
	}
}

// Seek repositions the handle's cursor. Only regular files and pseudo
// files support seeking; a negative result from Current would move the
// cursor before the start of the file, which is rejected with EINVAL
// rather than clamped.
func (oo *OpenedObject) Seek(offset int64, origin defs.SeekOrigin) (int64, defs.Err_t) {
	switch v := oo.obj.(type) {
	case *File:
		oo.mu.Lock()
		defer oo.mu.Unlock()
		var base int64
		switch origin {
		case defs.SeekStart:
			base = 0
		case defs.SeekCurrent:
			base = oo.pos
		case defs.SeekEnd:
			base = v.Size()
		default:
			return 0, defs.EINVAL
		}
		newPos := base + offset
		if newPos < 0 {
			return 0, defs.EINVAL
		}
		oo.pos = newPos
		return newPos, 0
	case *PseudoFile:
		return v.seek(offset, origin)
	default:
		return 0, defs.ENOTSUP
	}
}

// Size reports the underlying file's length, 0 for kinds without a
// natural size.
func (oo *OpenedObject) Size() int64 {
	if f, ok := oo.obj.(*File); ok {
		return f.Size()
	}
	return 0
}

// reopen adds a reference, used when a descriptor is dup'd (Go
// analogue of Biscuit's Copyfd, except the cursor is shared rather
// than duplicated since both descriptors point at the same handle).
func (oo *OpenedObject) reopen() {
	oo.mu.Lock()
	oo.refs++
	oo.mu.Unlock()
}

// release drops a reference, tearing the handle down (unregistering
// from a pipe, invoking a pseudo file's Close) once the last
// descriptor referencing it closes.
func (oo *OpenedObject) release() defs.Err_t {
	oo.mu.Lock()
	oo.refs--
	last := oo.refs == 0
	oo.mu.Unlock()
	if !last {
		return 0
	}
	switch v := oo.obj.(type) {
	case *Pipe:
		if oo.opts&defs.O_READ != 0 {
			v.CloseRead()
		}
		if oo.opts&defs.O_WRITE != 0 {
			v.CloseWrite()
		}
		return 0
	case *PseudoFile:
		return v.close()
	default:
		return 0
	}
}

// FDMax bounds the descriptor number space; the allocator wraps back
// to 0 after reaching it.
const FDMax = 4096

// OpenFiles is a process's open-file table: a forward-cursor allocator
// over a slice of slots, guarded by a single lock, matching the
// "process-wide, single lock" sharing policy.
type OpenFiles struct {
	mu    sync.Mutex
	slots []*OpenedObject
	next  int
}

// NewOpenFiles creates an empty open-file table.
func NewOpenFiles() *OpenFiles {
	return &OpenFiles{slots: make([]*OpenedObject, 0, 16)}
}

// Open installs obj as a newly opened handle and returns the first free
// descriptor at or after the table's forward cursor, wrapping the
// search at FDMax and failing EMFILE if every slot up to FDMax is in
// use. A freed descriptor below the cursor is reused only once the
// cursor wraps around to it.
func (of *OpenFiles) Open(obj Named, opts defs.OpenOptions) (defs.Fd_t, defs.Err_t) {
	of.mu.Lock()
	defer of.mu.Unlock()

	oo := newOpenedObject(obj, opts)
	return of.installLocked(oo)
}

func (of *OpenFiles) installLocked(oo *OpenedObject) (defs.Fd_t, defs.Err_t) {
	start := of.next
	for i := 0; i < FDMax; i++ {
		fd := (start + i) % FDMax
		if fd >= len(of.slots) {
			of.slots = append(of.slots, make([]*OpenedObject, fd-len(of.slots)+1)...)
		}
		if of.slots[fd] == nil {
			of.slots[fd] = oo
			of.next = (fd + 1) % FDMax
			return defs.Fd_t(fd), 0
		}
	}
	return 0, defs.EMFILE
}

// OpenWithFixedFD installs obj at exactly fd, failing EBADF if fd is
// already in use (dup2-like semantics).
func (of *OpenFiles) OpenWithFixedFD(fd defs.Fd_t, obj Named, opts defs.OpenOptions) defs.Err_t {
	of.mu.Lock()
	defer of.mu.Unlock()
	i := int(fd)
	if i < 0 || i >= FDMax {
		return defs.EBADF
	}
	if i >= len(of.slots) {
		of.slots = append(of.slots, make([]*OpenedObject, i-len(of.slots)+1)...)
	}
	if of.slots[i] != nil {
		return defs.EBADF
	}
	of.slots[i] = newOpenedObject(obj, opts)
	return 0
}

// Get resolves fd to its handle, or EBADF if unmapped.
func (of *OpenFiles) Get(fd defs.Fd_t) (*OpenedObject, defs.Err_t) {
	of.mu.Lock()
	defer of.mu.Unlock()
	i := int(fd)
	if i < 0 || i >= len(of.slots) || of.slots[i] == nil {
		return nil, defs.EBADF
	}
	return of.slots[i], 0
}

// Dup duplicates fd onto a freshly allocated descriptor sharing the
// same OpenedObject (and therefore the same cursor).
func (of *OpenFiles) Dup(fd defs.Fd_t) (defs.Fd_t, defs.Err_t) {
	of.mu.Lock()
	defer of.mu.Unlock()
	i := int(fd)
	if i < 0 || i >= len(of.slots) || of.slots[i] == nil {
		return 0, defs.EBADF
	}
	of.slots[i].reopen()
	return of.installLocked(of.slots[i])
}

// Close clears fd's slot, releasing the underlying handle's last
// reference if this was the only descriptor pointing at it.
func (of *OpenFiles) Close(fd defs.Fd_t) defs.Err_t {
	of.mu.Lock()
	i := int(fd)
	if i < 0 || i >= len(of.slots) || of.slots[i] == nil {
		of.mu.Unlock()
		return defs.EBADF
	}
	oo := of.slots[i]
	of.slots[i] = nil
	of.mu.Unlock()
	return oo.release()
}
