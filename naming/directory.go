package naming

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"corvus/defs"
)

// Directory is a named container of other Named objects. Each
// directory has its own lock rather than one lock for the whole tree,
// matching the "per-directory lock" sharing policy.
type Directory struct {
	mu       sync.RWMutex
	name     string
	children map[string]Named
}

// NewRootDirectory creates an empty directory meant to be the root of
// a naming tree (cwd "/").
func NewRootDirectory() *Directory {
	return &Directory{name: "", children: make(map[string]Named)}
}

// Kind implements Named.
func (d *Directory) Kind() Kind { return DirKind }

func (d *Directory) lookupLocked(name string) (Named, defs.Err_t) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.children[name]
	if !ok {
		return nil, defs.ENOENT
	}
	return n, 0
}

// Mkdir creates a child directory named name, failing EEXIST if an
// entry by that name already exists.
func (d *Directory) Mkdir(name string) defs.Err_t {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.children[name]; taken {
		return defs.EEXIST
	}
	d.children[name] = &Directory{name: name, children: make(map[string]Named)}
	return 0
}

// Mkentry attaches an already-constructed Named object under name,
// failing EEXIST if taken.
func (d *Directory) Mkentry(name string, obj Named) defs.Err_t {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.children[name]; taken {
		return defs.EEXIST
	}
	d.children[name] = obj
	return 0
}

// Mkfifo creates a pipe named name.
func (d *Directory) Mkfifo(name string) defs.Err_t {
	return d.Mkentry(name, NewPipe())
}

// Touch creates an empty file named name. If name already exists (of
// any kind), Touch is a no-op that reports success without truncating
// or replacing it.
func (d *Directory) Touch(name string) defs.Err_t {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.children[name]; taken {
		return 0
	}
	d.children[name] = NewFile()
	return 0
}

// Rename moves the entry named oldName to newName within the same
// directory, failing ENOENT if oldName is absent or EEXIST if newName
// is already taken.
func (d *Directory) Rename(oldName, newName string) defs.Err_t {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.children[oldName]
	if !ok {
		return defs.ENOENT
	}
	if _, taken := d.children[newName]; taken {
		return defs.EEXIST
	}
	delete(d.children, oldName)
	d.children[newName] = obj
	return 0
}

// Delete removes the entry named name, failing ENOENT if absent and
// ENOTEMPTY if it is a non-empty directory.
func (d *Directory) Delete(name string) defs.Err_t {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.children[name]
	if !ok {
		return defs.ENOENT
	}
	if sub, isDir := obj.(*Directory); isDir {
		sub.mu.RLock()
		empty := len(sub.children) == 0
		sub.mu.RUnlock()
		if !empty {
			return defs.ENOTEMPTY
		}
	}
	delete(d.children, name)
	return 0
}

// Readdir lists the names directly below d, sorted for a stable
// listing order.
func (d *Directory) Readdir() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.children))
	for n := range d.children {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dump writes a recursive listing of the tree rooted at d to w, for
// boot-time and debug diagnostics.
func Dump(w io.Writer, d *Directory) {
	dumpAt(w, d, "/")
}

func dumpAt(w io.Writer, d *Directory, path string) {
	fmt.Fprintf(w, "%s\n", path)
	for _, name := range d.Readdir() {
		child, _ := d.lookupLocked(name)
		childPath := path + name
		if sub, ok := child.(*Directory); ok {
			dumpAt(w, sub, childPath+"/")
			continue
		}
		fmt.Fprintf(w, "%s\n", childPath)
	}
}
