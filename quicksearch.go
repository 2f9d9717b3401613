package bore

import "bytes"

// Quick-Search (Sunday) exact matcher. The shift table is computed once
// per query and shared read-only by all workers.

// shiftTable holds, for every byte value, how far the window moves when
// the byte just past it mismatches.
type shiftTable [256]int

func makeShiftTable(needle []byte) *shiftTable {
	var t shiftTable
	m := len(needle)
	for i := range t {
		t[i] = m + 1
	}
	for i, b := range needle {
		t[b] = m - i
	}
	return &t
}

// findAll appends the byte offsets of up to cap(out)-len(out)
// occurrences of needle in haystack to out. Occurrences are
// non-overlapping: after a hit the scan resumes past it, so the count
// per file is deterministic regardless of the shift sequence.
// Matching is case sensitive, byte for byte.
func findAll(haystack, needle []byte, shift *shiftTable, out []int) []int {
	m := len(needle)
	n := len(haystack)
	if m == 0 || n < m {
		return out
	}

	if m == 1 {
		// The shift table buys nothing for a single byte.
		c := needle[0]
		for i, b := range haystack {
			if b == c {
				if len(out) == cap(out) {
					return out
				}
				out = append(out, i)
			}
		}
		return out
	}

	j := 0
	for j <= n-m {
		if haystack[j] == needle[0] && bytes.Equal(haystack[j+1:j+m], needle[1:]) {
			if len(out) == cap(out) {
				return out
			}
			out = append(out, j)
			j += m
			continue
		}
		if j+m >= n {
			break
		}
		j += shift[haystack[j+m]]
	}
	return out
}
