package cronexpr

import (
	"strconv"
	"strings"
)

// compileAtom expands one plain (non-special) atom into the set of values
// it matches within the inclusive bounds.
func compileAtom(atom string, min, max int) (map[int]struct{}, error) {
	atom = strings.TrimSpace(atom)
	step := 1

	switch {
	case atom == "*":
		set := make(map[int]struct{}, max-min+1)
		for v := min; v <= max; v++ {
			set[v] = struct{}{}
		}
		return set, nil

	case isDigits(atom):
		v, err := strconv.Atoi(atom)
		if err != nil {
			return nil, parseErrorf("unrecognized atom %q", atom)
		}
		if v < min || v > max {
			return nil, parseErrorf("value %q out of bounds %d-%d", atom, min, max)
		}
		return map[int]struct{}{v: {}}, nil

	case strings.ContainsAny(atom, "-/"):
		parts := strings.Split(atom, "/")
		subrange := parts[0]
		// A step only applies with exactly one slash; extra slash parts
		// leave the step at 1.
		if len(parts) == 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, parseErrorf("bad step in atom %q", atom)
			}
			step = n
		}

		var lo, hi int
		switch {
		case strings.Contains(subrange, "-"):
			ends := strings.Split(subrange, "-")
			if len(ends) != 2 {
				return nil, parseErrorf("unrecognized atom %q", atom)
			}
			a, errA := strconv.Atoi(ends[0])
			b, errB := strconv.Atoi(ends[1])
			if errA != nil || errB != nil {
				return nil, parseErrorf("unrecognized atom %q", atom)
			}
			// Only the low end is checked against min and the high end
			// against max, so a reversed pair like 30-6 under 0-23 is
			// legal and resolves through the wrap branch below.
			if a < min || b > max {
				return nil, parseErrorf("range %q out of bounds %d-%d", subrange, min, max)
			}
			lo, hi = a, b
		case subrange == "*":
			lo, hi = min, max
		default:
			return nil, parseErrorf("unrecognized atom %q", atom)
		}

		if step < 1 {
			return nil, parseErrorf("step must be positive in atom %q", atom)
		}

		if lo < hi {
			set := make(map[int]struct{})
			for v := lo; v <= hi; v += step {
				set[v] = struct{}{}
			}
			return set, nil
		}

		// Wrapping range (including lo == hi, which covers everything):
		// lay out lo..max then min..hi and keep every step-th element by
		// position, not by value. 18-6/4 over 0-23 selects 18, 22, 2, 6.
		var seq []int
		for v := lo; v <= max; v++ {
			seq = append(seq, v)
		}
		for v := min; v <= hi; v++ {
			seq = append(seq, v)
		}
		set := make(map[int]struct{})
		for i := 0; i < len(seq); i += step {
			set[seq[i]] = struct{}{}
		}
		return set, nil

	default:
		return nil, parseErrorf("unrecognized atom %q", atom)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
