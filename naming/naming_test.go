package naming

import (
	"bytes"
	"testing"

	"corvus/defs"
	"corvus/ustr"
)

func TestLookupWalksNestedDirectories(t *testing.T) {
	root := NewRootDirectory()
	if err := root.Mkdir("a"); err != 0 {
		t.Fatalf("unexpected Mkdir error: %d", err)
	}
	a, _ := LookupDir(root, ustr.MkUstrRoot().Extend("a"))
	if err := a.Touch("f"); err != 0 {
		t.Fatalf("unexpected Touch error: %d", err)
	}

	n, err := Lookup(root, ustr.MkUstrRoot().Extend("a").Extend("f"))
	if err != 0 {
		t.Fatalf("unexpected Lookup error: %d", err)
	}
	if _, ok := n.(*File); !ok {
		t.Errorf("expected /a/f to resolve to a *File; got %T", n)
	}
}

func TestLookupMissingComponentENOENT(t *testing.T) {
	root := NewRootDirectory()
	if _, err := Lookup(root, ustr.MkUstrRoot().Extend("nope")); err != defs.ENOENT {
		t.Errorf("expected ENOENT for a missing component; got %d", err)
	}
}

func TestLookupThroughFileENOTDIR(t *testing.T) {
	root := NewRootDirectory()
	root.Touch("f")
	if _, err := Lookup(root, ustr.MkUstrRoot().Extend("f").Extend("g")); err != defs.ENOTDIR {
		t.Errorf("expected ENOTDIR walking through a file; got %d", err)
	}
}

func TestLookupDirOnFileENOTDIR(t *testing.T) {
	root := NewRootDirectory()
	root.Touch("f")
	if _, err := LookupDir(root, ustr.MkUstrRoot().Extend("f")); err != defs.ENOTDIR {
		t.Errorf("expected ENOTDIR for LookupDir on a plain file; got %d", err)
	}
}

func TestTouchExistingIsNoop(t *testing.T) {
	root := NewRootDirectory()
	root.Mkdir("d")
	if err := root.Touch("d"); err != 0 {
		t.Errorf("expected Touch on an existing name to succeed as a no-op; got %d", err)
	}
	n, _ := Lookup(root, ustr.MkUstrRoot().Extend("d"))
	if _, ok := n.(*Directory); !ok {
		t.Errorf("expected the existing directory to survive Touch; got %T", n)
	}
}

func TestRenameAndDelete(t *testing.T) {
	root := NewRootDirectory()
	root.Touch("a")
	if err := root.Rename("a", "b"); err != 0 {
		t.Fatalf("unexpected Rename error: %d", err)
	}
	if _, err := Lookup(root, ustr.MkUstrRoot().Extend("a")); err != defs.ENOENT {
		t.Errorf("expected the old name to be gone; got err=%d", err)
	}
	if _, err := Lookup(root, ustr.MkUstrRoot().Extend("b")); err != 0 {
		t.Errorf("expected the new name to resolve; got err=%d", err)
	}
	if err := root.Delete("b"); err != 0 {
		t.Errorf("unexpected Delete error: %d", err)
	}
	if _, err := Lookup(root, ustr.MkUstrRoot().Extend("b")); err != defs.ENOENT {
		t.Errorf("expected the deleted name to be gone; got err=%d", err)
	}
}

func TestDeleteNonEmptyDirENOTEMPTY(t *testing.T) {
	root := NewRootDirectory()
	root.Mkdir("d")
	sub, _ := LookupDir(root, ustr.MkUstrRoot().Extend("d"))
	sub.Touch("f")
	if err := root.Delete("d"); err != defs.ENOTEMPTY {
		t.Errorf("expected ENOTEMPTY for a non-empty directory; got %d", err)
	}
}

func TestReaddirSorted(t *testing.T) {
	root := NewRootDirectory()
	root.Touch("z")
	root.Touch("a")
	root.Touch("m")
	got := root.Readdir()
	exp := []string{"a", "m", "z"}
	if len(got) != len(exp) {
		t.Fatalf("expected %v; got %v", exp, got)
	}
	for i := range exp {
		if got[i] != exp[i] {
			t.Errorf("expected %v; got %v", exp, got)
			break
		}
	}
}

func TestDumpListsWholeTree(t *testing.T) {
	root := NewRootDirectory()
	root.Mkdir("d")
	sub, _ := LookupDir(root, ustr.MkUstrRoot().Extend("d"))
	sub.Touch("f")

	var buf bytes.Buffer
	Dump(&buf, root)
	out := buf.String()
	for _, want := range []string{"/\n", "/d/\n", "/d/f\n"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("expected dump output to contain %q; got:\n%s", want, out)
		}
	}
}

func TestFileReadWriteZeroFill(t *testing.T) {
	f := NewFile()
	n, err := f.WriteAt(4, []byte("hi"))
	if err != 0 || n != 2 {
		t.Fatalf("unexpected WriteAt result: n=%d err=%d", n, err)
	}
	if f.Size() != 6 {
		t.Errorf("expected size 6 after writing at offset 4; got %d", f.Size())
	}
	buf := make([]byte, 6)
	n, err = f.ReadAt(0, buf)
	if err != 0 || n != 6 {
		t.Fatalf("unexpected ReadAt result: n=%d err=%d", n, err)
	}
	if !bytes.Equal(buf[:4], []byte{0, 0, 0, 0}) {
		t.Errorf("expected the gap before offset 4 to be zero-filled; got %v", buf[:4])
	}
	if string(buf[4:]) != "hi" {
		t.Errorf("expected the written bytes to read back; got %q", buf[4:])
	}
}

func TestFileReadPastEndReturnsZero(t *testing.T) {
	f := NewFile()
	f.WriteAt(0, []byte("ab"))
	buf := make([]byte, 4)
	n, err := f.ReadAt(10, buf)
	if err != 0 || n != 0 {
		t.Errorf("expected reading past EOF to return 0 bytes with no error; got n=%d err=%d", n, err)
	}
}

func TestFileNegativeOffsetEINVAL(t *testing.T) {
	f := NewFile()
	if _, err := f.ReadAt(-1, make([]byte, 1)); err != defs.EINVAL {
		t.Errorf("expected EINVAL for a negative read offset; got %d", err)
	}
	if _, err := f.WriteAt(-1, []byte("x")); err != defs.EINVAL {
		t.Errorf("expected EINVAL for a negative write offset; got %d", err)
	}
}

func TestStatPath(t *testing.T) {
	root := NewRootDirectory()
	root.Touch("f")
	root.Mkdir("d")
	root.Mkfifo("p")

	st, err := StatPath(root, ustr.MkUstrRoot().Extend("f"))
	if err != 0 || st.Kind != FileKind {
		t.Errorf("expected file stat; got %+v err=%d", st, err)
	}
	st, err = StatPath(root, ustr.MkUstrRoot().Extend("d"))
	if err != 0 || st.Kind != DirKind {
		t.Errorf("expected directory stat; got %+v err=%d", st, err)
	}
	st, err = StatPath(root, ustr.MkUstrRoot().Extend("p"))
	if err != 0 || st.Kind != PipeKind {
		t.Errorf("expected pipe stat; got %+v err=%d", st, err)
	}
	if _, err := StatPath(root, ustr.MkUstrRoot().Extend("missing")); err != defs.ENOENT {
		t.Errorf("expected ENOENT for a missing path; got %d", err)
	}
}
