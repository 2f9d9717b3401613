package bore

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func search(haystack, needle string, max int) []int {
	return findAll([]byte(haystack), []byte(needle), makeShiftTable([]byte(needle)), make([]int, 0, max))
}

func TestFindAll(t *testing.T) {
	cases := []struct {
		haystack, needle string
		want             []int
	}{
		{"int x; int y;", "int", []int{0, 7}},
		{"abc", "abc", []int{0}},
		{"abc", "abcd", nil},
		{"", "a", nil},
		{"xyz", "q", nil},
		{"needle at the end: needle", "needle", []int{0, 19}},
		{"aaaa", "aa", []int{0, 2}}, // non-overlapping
		{"Case", "case", nil},       // case sensitive
	}
	for _, c := range cases {
		got := search(c.haystack, c.needle, 100)
		if len(got) == 0 {
			got = nil
		}
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("findAll(%q, %q): (-want +got)\n%s", c.haystack, c.needle, d)
		}
	}
}

func TestFindAllSingleByte(t *testing.T) {
	got := search("a.a.a", "a", 100)
	if d := cmp.Diff([]int{0, 2, 4}, got); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestFindAllCap(t *testing.T) {
	haystack := strings.Repeat("ab", 250)
	got := search(haystack, "ab", 100)
	if len(got) != 100 {
		t.Fatalf("got %d offsets, want 100", len(got))
	}
	for i, off := range got {
		if off != 2*i {
			t.Fatalf("offset[%d] = %d, want %d", i, off, 2*i)
		}
	}
}

func TestFindAllAscending(t *testing.T) {
	haystack := strings.Repeat("x needle y ", 50)
	got := search(haystack, "needle", 100)
	if len(got) != 50 {
		t.Fatalf("got %d offsets, want 50", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("offsets not ascending: %v", got)
		}
	}
}
