// Package naming implements the open-object layer: a path-addressed
// tree of named objects (directories, files, pipes, and pseudo-files)
// plus the process-wide open-file table that hands out descriptors for
// them. Grounded on original_source's naming/*.rs for the path-walk
// algorithm and file/pipe semantics, and on Biscuit's fd.Fd_t for the
// open-file-table idiom.
package naming

import (
	"corvus/defs"
	"corvus/ustr"
)

// Kind identifies what a Named object actually is, since Go has no
// tagged-union type the way original_source's NamedObject enum does.
type Kind int

const (
	DirKind Kind = iota
	FileKind
	PipeKind
	PseudoKind
)

// Named is anything the naming tree can hold as a directory entry.
type Named interface {
	Kind() Kind
}

// Lookup resolves an absolute path from root, walking one component at
// a time. Every non-terminal component must resolve to a directory;
// the terminal component may be any kind. Missing components fail with
// ENOENT; a non-directory used as an intermediate fails with ENOTDIR.
func Lookup(root *Directory, path ustr.Ustr) (Named, defs.Err_t) {
	comps := path.Components()
	var cur Named = root
	for i, c := range comps {
		dir, ok := cur.(*Directory)
		if !ok {
			return nil, defs.ENOTDIR
		}
		next, err := dir.lookupLocked(c)
		if err != 0 {
			return nil, err
		}
		cur = next
		_ = i
	}
	return cur, 0
}

// LookupDir resolves path and requires the result to be a directory,
// matching lookup.rs's lookup_dir: a regular file at the terminal
// component is ENOTDIR, not a silent success.
func LookupDir(root *Directory, path ustr.Ustr) (*Directory, defs.Err_t) {
	n, err := Lookup(root, path)
	if err != 0 {
		return nil, err
	}
	d, ok := n.(*Directory)
	if !ok {
		return nil, defs.ENOTDIR
	}
	return d, 0
}

// splitParent resolves path's parent directory and returns it along
// with the final path component, for the operations below (mkdir,
// touch, mkfifo, mkentry) that create an entry by name inside an
// already-resolved directory.
func splitParent(root *Directory, path ustr.Ustr) (*Directory, string, defs.Err_t) {
	comps := path.Components()
	if len(comps) == 0 {
		return nil, "", defs.EINVAL
	}
	parentPath := ustr.MkUstrRoot()
	for _, c := range comps[:len(comps)-1] {
		parentPath = parentPath.Extend(c)
	}
	parent, err := LookupDir(root, parentPath)
	if err != 0 {
		return nil, "", err
	}
	return parent, comps[len(comps)-1], 0
}

// Mkdir creates a directory at path, resolving its parent from root.
func Mkdir(root *Directory, path ustr.Ustr) defs.Err_t {
	parent, name, err := splitParent(root, path)
	if err != 0 {
		return err
	}
	return parent.Mkdir(name)
}

// Touch creates an empty file at path, resolving its parent from root.
func Touch(root *Directory, path ustr.Ustr) defs.Err_t {
	parent, name, err := splitParent(root, path)
	if err != 0 {
		return err
	}
	return parent.Touch(name)
}

// Mkfifo creates a pipe at path, resolving its parent from root.
func Mkfifo(root *Directory, path ustr.Ustr) defs.Err_t {
	parent, name, err := splitParent(root, path)
	if err != 0 {
		return err
	}
	return parent.Mkfifo(name)
}

// Mkentry attaches an already-constructed Named object at path,
// resolving its parent from root.
func Mkentry(root *Directory, path ustr.Ustr, obj Named) defs.Err_t {
	parent, name, err := splitParent(root, path)
	if err != 0 {
		return err
	}
	return parent.Mkentry(name, obj)
}
