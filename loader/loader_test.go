package loader

import (
	"encoding/binary"
	"testing"

	"corvus/defs"
)

func buildHeader(entry, codeLen, heapLen uint64, code []uint8) []uint8 {
	buf := make([]uint8, headerSize+len(code))
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint64(buf[8:16], entry)
	binary.LittleEndian.PutUint64(buf[16:24], codeLen)
	binary.LittleEndian.PutUint64(buf[24:32], heapLen)
	copy(buf[headerSize:], code)
	return buf
}

func TestParseHeaderAccepts(t *testing.T) {
	code := []uint8{0x90, 0x90, 0xc3}
	buf := buildHeader(0x1000, uint64(len(code)), 4096, code)
	h, err := parseHeader(buf)
	if err != 0 {
		t.Fatalf("unexpected error %v", err)
	}
	if h.Entry != 0x1000 || h.CodeLen != uint64(len(code)) || h.HeapLen != 4096 {
		t.Errorf("unexpected header %+v", h)
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	buf := buildHeader(0, 0, 0, nil)
	binary.LittleEndian.PutUint32(buf[0:4], 0xdeadbeef)
	if _, err := parseHeader(buf); err != defs.EINVAL {
		t.Errorf("expected EINVAL, got %v", err)
	}
}

func TestParseHeaderRejectsTruncated(t *testing.T) {
	if _, err := parseHeader(make([]uint8, 4)); err != defs.EINVAL {
		t.Errorf("expected EINVAL for a too-short buffer, got %v", err)
	}
	buf := buildHeader(0, 100, 0, []uint8{1, 2, 3})
	if _, err := parseHeader(buf); err != defs.EINVAL {
		t.Errorf("expected EINVAL when codeLen overruns the buffer, got %v", err)
	}
}

func TestPagesFor(t *testing.T) {
	cases := []struct {
		n    uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{4096, 1},
		{4097, 2},
		{8192, 2},
	}
	for _, c := range cases {
		if got := pagesFor(c.n); got != c.want {
			t.Errorf("pagesFor(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
