package bore

import "unsafe"

const cacheLine = 64

// Arena is a growable bump allocator. Allocations are addressed by byte
// offsets rather than pointers, so the backing array may be reallocated
// without invalidating handles. The base of the backing array is aligned
// to a cache line. Offset 0 is reserved as a NULL sentinel; the first
// byte is consumed at init time.
type Arena struct {
	buf []byte // aligned; buf[:len] is live
}

// NewArena returns an arena with at least the given initial capacity.
func NewArena(capacity int) *Arena {
	if capacity < cacheLine {
		capacity = cacheLine
	}
	a := &Arena{buf: alignedBytes(capacity)}
	a.Alloc(1)
	return a
}

// alignedBytes returns an empty slice with the given capacity whose base
// pointer sits on a cache line boundary.
func alignedBytes(capacity int) []byte {
	raw := make([]byte, capacity+cacheLine)
	pad := int(-uintptr(unsafe.Pointer(&raw[0])) & (cacheLine - 1))
	return raw[pad : pad : pad+capacity]
}

// Alloc reserves n bytes and returns their offset. The offset stays
// dereferenceable through the arena for its whole lifetime, no matter
// how often the backing array is reallocated.
func (a *Arena) Alloc(n int) uint32 {
	if len(a.buf)+n > cap(a.buf) {
		a.grow(n)
	}
	off := len(a.buf)
	a.buf = a.buf[: off+n : cap(a.buf)]
	return uint32(off)
}

func (a *Arena) grow(n int) {
	newcap := 2 * cap(a.buf)
	if need := len(a.buf) + n; need > newcap {
		newcap = 2 * need
	}
	next := alignedBytes(newcap)
	next = next[:len(a.buf)]
	copy(next, a.buf)
	a.buf = next
}

// Trim retracts the last n bytes. It must not cross into memory handed
// out by an earlier Alloc that the caller still uses.
func (a *Arena) Trim(n int) {
	a.buf = a.buf[: len(a.buf)-n : cap(a.buf)]
}

// Reset retracts everything allocated after init. Capacity is kept.
func (a *Arena) Reset() {
	a.buf = a.buf[:1:cap(a.buf)]
}

// Len returns the live size in bytes, including the sentinel byte.
func (a *Arena) Len() int { return len(a.buf) }

// Cap returns the current capacity in bytes.
func (a *Arena) Cap() int { return cap(a.buf) }

// Bytes returns the n bytes at off. The returned slice aliases the
// arena and is only valid until the next Alloc.
func (a *Arena) Bytes(off uint32, n int) []byte {
	return a.buf[off : int(off)+n]
}

// Free releases the backing array.
func (a *Arena) Free() { a.buf = nil }

// StringTable interns NUL-terminated byte strings in an arena and hands
// out their offsets. Offset 0 never names a string and doubles as the
// NULL value.
type StringTable struct {
	a *Arena
}

func NewStringTable(capacity int) *StringTable {
	return &StringTable{a: NewArena(capacity)}
}

// Intern copies s into the arena, NUL-terminated, and returns its offset.
func (t *StringTable) Intern(s string) uint32 {
	off := t.a.Alloc(len(s) + 1)
	b := t.a.Bytes(off, len(s)+1)
	copy(b, s)
	b[len(s)] = 0
	return off
}

// StrBytes returns the string at off without the terminating NUL. The
// slice aliases the arena; it is valid until the next Intern.
func (t *StringTable) StrBytes(off uint32) []byte {
	b := t.a.buf[off:]
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

// Str returns a copy of the string at off.
func (t *StringTable) Str(off uint32) string {
	return string(t.StrBytes(off))
}

// Size returns the live byte size of the table.
func (t *StringTable) Size() int { return t.a.Len() }

// Free releases the table's arena.
func (t *StringTable) Free() { t.a.Free() }
