package naming

import (
	"corvus/defs"
	"corvus/ustr"
)

// Stat describes a named object's metadata independent of opening it,
// matching original_source's naming/stat.rs: every directory listing
// operation needs the same (kind, size) pair, and paying for an open
// just to answer "how big is this" is wasteful.
type Stat struct {
	Kind Kind
	Size int64
}

// StatPath resolves path from root and reports its Stat without
// opening it.
func StatPath(root *Directory, path ustr.Ustr) (Stat, defs.Err_t) {
	n, err := Lookup(root, path)
	if err != 0 {
		return Stat{}, err
	}
	switch v := n.(type) {
	case *File:
		return Stat{Kind: FileKind, Size: v.Size()}, 0
	case *Directory:
		return Stat{Kind: DirKind}, 0
	case *Pipe:
		return Stat{Kind: PipeKind}, 0
	case *PseudoFile:
		return Stat{Kind: PseudoKind}, 0
	default:
		return Stat{}, defs.EINVAL
	}
}
