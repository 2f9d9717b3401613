package bore

// The hashes below key the extension filter and the toggle index. They
// are a DJB2 variant with an ASCII case fold, finished with an avalanche
// tail. Collisions are tolerated: every lookup that must be exact
// re-checks the path bytes (see toggle.go).

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// foldHash hashes all of s, case folded.
func foldHash(s []byte) uint32 {
	var h uint32
	for _, b := range s {
		h = 33*h + uint32(foldByte(b))
	}
	return h + h>>5
}

// foldHashN hashes the first n bytes of s, case folded.
func foldHashN(s []byte, n int) uint32 {
	var h uint32
	for _, b := range s[:n] {
		h = 33*h + uint32(foldByte(b))
	}
	return h + h>>5
}

// foldHashString is foldHash over a string.
func foldHashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = 33*h + uint32(foldByte(s[i]))
	}
	return h + h>>5
}

// foldCompare orders a and b byte-wise with an ASCII case fold. It is
// the comparison under which the file table is sorted and deduplicated.
func foldCompare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := foldByte(a[i]), foldByte(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func foldEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}

// foldEqualString is foldEqual for a byte slice against a string.
func foldEqualString(a []byte, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}

// commonFoldPrefix returns the length of the longest common case-folded
// prefix of a and b.
func commonFoldPrefix(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if foldByte(a[i]) != foldByte(b[i]) {
			return i
		}
	}
	return n
}
