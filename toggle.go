package bore

import (
	"errors"
	"sort"

	"github.com/pjkack/bore/paths"
)

// toggleExts is the extension preference list of the companion-file
// index. The position within the list is the extension rank: toggling
// cycles header/source/inline files in this order.
var toggleExts = []string{"cpp", "cxx", "c", "inl", "hpp", "hxx", "h", "asm", "s", "ddf"}

var toggleExtHashes = func() []uint32 {
	hs := make([]uint32, len(toggleExts))
	for i, e := range toggleExts {
		hs[i] = foldHashString(e)
	}
	return hs
}()

// toggleEntry keys one file of the toggle index. Different base names
// may collide on basenameHash; lookups re-check the path bytes.
type toggleEntry struct {
	basenameHash uint32
	extRank      uint32
	pathOff      uint32 // file path offset in the string table
}

// ErrNotFound is returned by Toggle when the current file is not in the
// index or has no companion.
var ErrNotFound = errors.New("bore: not found")

func toggleRankOf(ext []byte) (uint32, bool) {
	if len(ext) == 0 {
		return 0, false
	}
	h := foldHash(ext)
	for i, eh := range toggleExtHashes {
		if eh == h {
			return uint32(i), true
		}
	}
	return 0, false
}

func (idx *Index) buildToggle() {
	for _, f := range idx.Files {
		path := idx.Strings.StrBytes(f.Path)
		rank, ok := toggleRankOf(extOf(path))
		if !ok {
			continue
		}
		base, _ := baseNameOf(path)
		idx.toggle = append(idx.toggle, toggleEntry{
			basenameHash: foldHash(base),
			extRank:      rank,
			pathOff:      f.Path,
		})
	}
	sort.Slice(idx.toggle, func(i, j int) bool {
		a, b := idx.toggle[i], idx.toggle[j]
		if a.basenameHash != b.basenameHash {
			return a.basenameHash < b.basenameHash
		}
		return a.extRank < b.extRank
	})
}

// Toggle returns the companion file of currentPath: the indexed file
// with the same base name and the next extension in the preference
// list. Among equally ranked candidates the one sharing the longest
// case-insensitive path prefix with currentPath wins, which keeps the
// toggle within the same directory tree when a solution contains
// several same-named files.
func (idx *Index) Toggle(currentPath string) (string, error) {
	cur, err := paths.Canonicalize(currentPath)
	if err != nil {
		return "", ErrNotFound
	}
	curb := []byte(cur)

	curRank, ok := toggleRankOf(extOf(curb))
	if !ok {
		return "", ErrNotFound
	}
	base, _ := baseNameOf(curb)
	h := foldHash(base)

	// Lower bound of the equal-hash run, then a linear probe over it.
	lo := sort.Search(len(idx.toggle), func(i int) bool {
		return idx.toggle[i].basenameHash >= h
	})
	hi := lo
	for hi < len(idx.toggle) && idx.toggle[hi].basenameHash == h {
		hi++
	}
	if lo == hi {
		return "", ErrNotFound
	}
	run := idx.toggle[lo:hi]

	self := -1
	for i := range run {
		if run[i].extRank == curRank && foldEqual(idx.Strings.StrBytes(run[i].pathOff), curb) {
			self = i
			break
		}
	}
	if self == -1 {
		return "", ErrNotFound
	}

	// Advance circularly until the rank changes; the entries holding
	// that rank form the candidate group.
	start := -1
	for step := 1; step <= len(run); step++ {
		i := (self + step) % len(run)
		if run[i].extRank != curRank {
			start = i
			break
		}
	}
	if start == -1 {
		return "", ErrNotFound
	}

	best := -1
	bestScore := -1
	groupRank := run[start].extRank
	for step := 0; step < len(run); step++ {
		i := (start + step) % len(run)
		if run[i].extRank != groupRank {
			break
		}
		score := commonFoldPrefix(idx.Strings.StrBytes(run[i].pathOff), curb)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return idx.Strings.Str(run[best].pathOff), nil
}
