package bore

import (
	"bytes"
	"fmt"
	"testing"
)

func TestArenaOffsetsSurviveGrowth(t *testing.T) {
	a := NewArena(cacheLine)

	type handle struct {
		off  uint32
		want []byte
	}
	var handles []handle
	for i := 0; i < 1000; i++ {
		data := []byte(fmt.Sprintf("payload-%d", i))
		off := a.Alloc(len(data))
		copy(a.Bytes(off, len(data)), data)
		handles = append(handles, handle{off, data})
	}

	for _, h := range handles {
		if got := a.Bytes(h.off, len(h.want)); !bytes.Equal(got, h.want) {
			t.Fatalf("offset %d: got %q, want %q", h.off, got, h.want)
		}
	}
}

func TestArenaReservesNullOffset(t *testing.T) {
	a := NewArena(128)
	if off := a.Alloc(4); off == 0 {
		t.Fatalf("first allocation got offset 0, want non-zero")
	}
	if a.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", a.Len())
	}
}

func TestArenaTrim(t *testing.T) {
	a := NewArena(128)
	a.Alloc(10)
	a.Trim(4)
	if a.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", a.Len())
	}
	// The next allocation reuses the trimmed range.
	if off := a.Alloc(4); off != 7 {
		t.Fatalf("Alloc after Trim = %d, want 7", off)
	}
}

func TestArenaReset(t *testing.T) {
	a := NewArena(128)
	a.Alloc(100)
	a.Alloc(100) // forces growth
	capBefore := a.Cap()
	a.Reset()
	if a.Len() != 1 {
		t.Fatalf("Len() after Reset = %d, want 1", a.Len())
	}
	if a.Cap() != capBefore {
		t.Fatalf("Cap() after Reset = %d, want %d", a.Cap(), capBefore)
	}
}

func TestArenaGrowthExactFit(t *testing.T) {
	a := NewArena(cacheLine)
	// A request much larger than double the capacity must still fit.
	off := a.Alloc(10 * cacheLine)
	b := a.Bytes(off, 10*cacheLine)
	if len(b) != 10*cacheLine {
		t.Fatalf("got %d bytes, want %d", len(b), 10*cacheLine)
	}
}

func TestStringTable(t *testing.T) {
	st := NewStringTable(16)

	offs := make([]uint32, 0, 100)
	for i := 0; i < 100; i++ {
		offs = append(offs, st.Intern(fmt.Sprintf("s-%d", i)))
	}
	for i, off := range offs {
		if got, want := st.Str(off), fmt.Sprintf("s-%d", i); got != want {
			t.Fatalf("Str(%d) = %q, want %q", off, got, want)
		}
	}
	if offs[0] == 0 {
		t.Fatalf("interned string got the NULL offset")
	}
}

func TestStringTableEmptyString(t *testing.T) {
	st := NewStringTable(16)
	off := st.Intern("")
	if got := st.Str(off); got != "" {
		t.Fatalf("Str = %q, want empty", got)
	}
}
