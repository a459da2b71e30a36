package naming

import "corvus/defs"

// PseudoFile adapts an arbitrary device, socket, or RDMA endpoint into
// the naming tree by way of a small optional vtable, matching
// original_source's description of pseudo files: any member left nil
// behaves as ENOTSUP rather than panicking.
type PseudoFile struct {
	OpenFn  func() defs.Err_t
	ReadFn  func(buf []uint8) (int, defs.Err_t)
	WriteFn func(buf []uint8) (int, defs.Err_t)
	SeekFn  func(pos int64, origin defs.SeekOrigin) (int64, defs.Err_t)
	CloseFn func() defs.Err_t
}

// Kind implements Named.
func (p *PseudoFile) Kind() Kind { return PseudoKind }

func (p *PseudoFile) open() defs.Err_t {
	if p.OpenFn == nil {
		return 0
	}
	return p.OpenFn()
}

func (p *PseudoFile) read(buf []uint8) (int, defs.Err_t) {
	if p.ReadFn == nil {
		return 0, defs.ENOTSUP
	}
	return p.ReadFn(buf)
}

func (p *PseudoFile) write(buf []uint8) (int, defs.Err_t) {
	if p.WriteFn == nil {
		return 0, defs.ENOTSUP
	}
	return p.WriteFn(buf)
}

func (p *PseudoFile) seek(pos int64, origin defs.SeekOrigin) (int64, defs.Err_t) {
	if p.SeekFn == nil {
		return 0, defs.ENOTSUP
	}
	return p.SeekFn(pos, origin)
}

func (p *PseudoFile) close() defs.Err_t {
	if p.CloseFn == nil {
		return 0
	}
	return p.CloseFn()
}
