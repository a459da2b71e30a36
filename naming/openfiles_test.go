package naming

import (
	"testing"

	"corvus/defs"
)

func TestOpenFilesAllocatesFromForwardCursor(t *testing.T) {
	of := NewOpenFiles()
	fd0, err := of.Open(NewFile(), defs.O_READ|defs.O_WRITE)
	if err != 0 || fd0 != 0 {
		t.Fatalf("expected the first open to land on fd 0; got fd=%d err=%d", fd0, err)
	}
	fd1, err := of.Open(NewFile(), defs.O_READ|defs.O_WRITE)
	if err != 0 || fd1 != 1 {
		t.Fatalf("expected the second open to land on fd 1; got fd=%d err=%d", fd1, err)
	}
	if err := of.Close(fd0); err != 0 {
		t.Fatalf("unexpected Close error: %d", err)
	}
	fd2, err := of.Open(NewFile(), defs.O_READ|defs.O_WRITE)
	// the cursor sits past fd 1, so the freed fd 0 is not reused yet.
	if err != 0 || fd2 != 2 {
		t.Errorf("expected the third open to land on fd 2 (cursor moves forward); got fd=%d err=%d", fd2, err)
	}
}

func TestOpenFilesGetUnmappedEBADF(t *testing.T) {
	of := NewOpenFiles()
	if _, err := of.Get(7); err != defs.EBADF {
		t.Errorf("expected EBADF for an unmapped fd; got %d", err)
	}
}

func TestOpenFilesReadWriteThroughFD(t *testing.T) {
	of := NewOpenFiles()
	fd, _ := of.Open(NewFile(), defs.O_READ|defs.O_WRITE)
	oo, err := of.Get(fd)
	if err != 0 {
		t.Fatalf("unexpected Get error: %d", err)
	}
	n, err := oo.Write([]byte("hello"))
	if err != 0 || n != 5 {
		t.Fatalf("unexpected write result: n=%d err=%d", n, err)
	}
	buf := make([]byte, 5)
	oo.Seek(0, defs.SeekStart)
	n, err = oo.Read(buf)
	if err != 0 || n != 5 || string(buf) != "hello" {
		t.Errorf("expected to read back \"hello\"; got %q n=%d err=%d", buf[:n], n, err)
	}
}

func TestOpenFilesWriteReadOnlyEACCES(t *testing.T) {
	of := NewOpenFiles()
	fd, _ := of.Open(NewFile(), defs.O_READ)
	oo, _ := of.Get(fd)
	if _, err := oo.Write([]byte("x")); err != defs.EACCES {
		t.Errorf("expected EACCES writing to a read-only handle; got %d", err)
	}
}

func TestOpenFilesDupSharesCursor(t *testing.T) {
	of := NewOpenFiles()
	fd, _ := of.Open(NewFile(), defs.O_READ|defs.O_WRITE)
	oo, _ := of.Get(fd)
	oo.Write([]byte("abc"))

	dupFd, err := of.Dup(fd)
	if err != 0 {
		t.Fatalf("unexpected Dup error: %d", err)
	}
	dupOO, _ := of.Get(dupFd)
	if dupOO != oo {
		t.Fatal("expected a duped fd to share the same OpenedObject")
	}

	buf := make([]byte, 3)
	n, err := dupOO.Read(buf)
	// the cursor is shared and already sits at offset 3 (after the
	// Write above), so a read through the dup sees EOF, not the bytes
	// just written.
	if err != 0 || n != 0 {
		t.Errorf("expected a shared cursor to already be past the written bytes; got n=%d err=%d", n, err)
	}
}

func TestOpenFilesCloseReleasesOnLastRef(t *testing.T) {
	of := NewOpenFiles()
	fd, _ := of.Open(NewFile(), defs.O_READ|defs.O_WRITE)
	dupFd, _ := of.Dup(fd)

	if err := of.Close(fd); err != 0 {
		t.Fatalf("unexpected Close error: %d", err)
	}
	if _, err := of.Get(fd); err != defs.EBADF {
		t.Errorf("expected the closed fd to be unmapped; got %d", err)
	}
	if _, err := of.Get(dupFd); err != 0 {
		t.Errorf("expected the dup'd fd to remain valid while a reference is still open; got %d", err)
	}
}

func TestOpenFilesOpenWithFixedFDTakenEBADF(t *testing.T) {
	of := NewOpenFiles()
	if err := of.OpenWithFixedFD(3, NewFile(), defs.O_READ); err != 0 {
		t.Fatalf("unexpected error installing at a fixed fd: %d", err)
	}
	if err := of.OpenWithFixedFD(3, NewFile(), defs.O_READ); err != defs.EBADF {
		t.Errorf("expected EBADF reusing a taken fixed fd; got %d", err)
	}
}
