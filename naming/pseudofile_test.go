package naming

import (
	"testing"

	"corvus/defs"
)

func TestPseudoFileDefaultsToENOTSUP(t *testing.T) {
	p := &PseudoFile{}
	if err := p.open(); err != 0 {
		t.Errorf("expected a nil OpenFn to default to success; got %d", err)
	}
	if _, err := p.read(nil); err != defs.ENOTSUP {
		t.Errorf("expected a nil ReadFn to default to ENOTSUP; got %d", err)
	}
	if _, err := p.write(nil); err != defs.ENOTSUP {
		t.Errorf("expected a nil WriteFn to default to ENOTSUP; got %d", err)
	}
	if _, err := p.seek(0, defs.SeekStart); err != defs.ENOTSUP {
		t.Errorf("expected a nil SeekFn to default to ENOTSUP; got %d", err)
	}
	if err := p.close(); err != 0 {
		t.Errorf("expected a nil CloseFn to default to success; got %d", err)
	}
}

func TestPseudoFileDelegates(t *testing.T) {
	var gotBuf []uint8
	p := &PseudoFile{
		ReadFn: func(buf []uint8) (int, defs.Err_t) {
			gotBuf = buf
			return len(buf), 0
		},
	}
	buf := make([]uint8, 3)
	n, err := p.read(buf)
	if err != 0 || n != 3 {
		t.Fatalf("unexpected read result: n=%d err=%d", n, err)
	}
	if len(gotBuf) != 3 {
		t.Errorf("expected the buffer to be passed through to ReadFn")
	}
}
