package cronexpr

import (
	"errors"
	"sort"
	"testing"
)

func sortedValues(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seq(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

func TestCompileAtom(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		atom string
		min  int
		max  int
		want []int
	}{
		{name: "star", atom: "*", min: 0, max: 6, want: seq(0, 6)},
		{name: "single", atom: "7", min: 0, max: 23, want: []int{7}},
		{name: "single at low bound", atom: "0", min: 0, max: 59, want: []int{0}},
		{name: "single at high bound", atom: "31", min: 1, max: 31, want: []int{31}},
		{name: "trimmed", atom: " 5 ", min: 0, max: 59, want: []int{5}},
		{name: "ascending range", atom: "1-5", min: 0, max: 6, want: []int{1, 2, 3, 4, 5}},
		{name: "star step six", atom: "*/6", min: 0, max: 23, want: []int{0, 6, 12, 18}},
		{name: "star step nine", atom: "*/9", min: 0, max: 23, want: []int{0, 9, 18}},
		{name: "range with step", atom: "10-20/3", min: 0, max: 59, want: []int{10, 13, 16, 19}},
		{name: "wrap positional stride", atom: "18-6/4", min: 0, max: 23, want: []int{2, 6, 18, 22}},
		{name: "wrap even stride", atom: "12-4/2", min: 0, max: 23, want: []int{0, 2, 4, 12, 14, 16, 18, 20, 22}},
		{name: "wrap no step", atom: "22-2", min: 0, max: 23, want: []int{0, 1, 2, 22, 23}},
		{name: "reversed low segment only", atom: "30-6", min: 0, max: 23, want: seq(0, 6)},
		{name: "equal ends cover everything", atom: "3-3", min: 0, max: 6, want: seq(0, 6)},
		{name: "second slash disables step", atom: "1-3/5/7", min: 0, max: 59, want: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileAtom(tt.atom, tt.min, tt.max)
			if err != nil {
				t.Fatalf("compileAtom(%q) error: %v", tt.atom, err)
			}
			if vals := sortedValues(got); !equalInts(vals, tt.want) {
				t.Fatalf("compileAtom(%q) = %v, want %v", tt.atom, vals, tt.want)
			}
		})
	}
}

func TestCompileAtomErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		atom string
		min  int
		max  int
	}{
		{name: "empty", atom: "", min: 0, max: 59},
		{name: "garbage", atom: "x", min: 0, max: 59},
		{name: "value above max", atom: "60", min: 0, max: 59},
		{name: "value below min", atom: "0", min: 1, max: 31},
		{name: "range above max", atom: "0-60", min: 0, max: 59},
		{name: "range below min", atom: "0-5", min: 1, max: 31},
		{name: "three range parts", atom: "1-2-3", min: 0, max: 59},
		{name: "missing range end", atom: "1-", min: 0, max: 59},
		{name: "negative literal", atom: "-5", min: 0, max: 59},
		{name: "step without range", atom: "5/2", min: 0, max: 59},
		{name: "step not a number", atom: "*/x", min: 0, max: 59},
		{name: "zero step", atom: "*/0", min: 0, max: 59},
		{name: "empty step", atom: "*/", min: 0, max: 59},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileAtom(tt.atom, tt.min, tt.max)
			if err == nil {
				t.Fatalf("compileAtom(%q) succeeded, want error", tt.atom)
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("compileAtom(%q) error %v does not wrap ErrParse", tt.atom, err)
			}
		})
	}
}
