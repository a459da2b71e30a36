// Package ustr implements the small path-string type the naming service
// and syscall gate pass around. It is adapted from Biscuit's ustr
// package, trimmed to a plain absolute-path grammar (no "."/".."
// handling at this layer).
package ustr

import "strings"

// Ustr is an immutable path used by the kernel.
type Ustr string

// MkUstrRoot returns a Ustr for the root directory "/".
func MkUstrRoot() Ustr {
	return Ustr("/")
}

// IsAbsolute reports whether the path begins with '/'.
func (us Ustr) IsAbsolute() bool {
	return len(us) > 0 && us[0] == '/'
}

// Eq compares two Ustr values for equality.
func (us Ustr) Eq(s Ustr) bool {
	return us == s
}

// String converts the Ustr to a Go string.
func (us Ustr) String() string {
	return string(us)
}

// Components splits an absolute path into its non-empty components.
// "/a//b/" becomes ["a", "b"]; the root path "/" yields an empty slice.
func (us Ustr) Components() []string {
	parts := strings.Split(string(us), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Extend appends '/' and p to the current Ustr and returns the result.
func (us Ustr) Extend(p string) Ustr {
	if us == "/" {
		return Ustr("/" + p)
	}
	return us + Ustr("/"+p)
}
