package syscallgate

import (
	"corvus/sched"
	"corvus/ustr"
)

// resolvePath turns a syscall's raw path argument into an absolute
// path the naming service can resolve: a path that already starts
// with '/' is used as-is; anything else is taken relative to the
// calling process's current working directory.
func resolvePath(proc *sched.Process, path string) ustr.Ustr {
	p := ustr.Ustr(path)
	if p.IsAbsolute() {
		return p
	}
	return proc.GetCwd().Extend(path)
}
