package cronexpr

import (
	"strconv"
	"strings"
)

type specialKind int

const (
	// %N: matches when the elapsed count of this field's unit since the
	// epoch is divisible by N. Valid in every field.
	specialPeriodic specialKind = iota
	// D#N: the Nth occurrence of weekday D in the month. Day-of-week only.
	specialNthWeekday
	// NW: the business day nearest to day N. Day-of-month only.
	specialNearestWeekday
	// L: the last day of the month. Day-of-month only; a digit prefix is
	// accepted and ignored.
	specialLastDay
	// DL: the last occurrence of weekday D in the month. Day-of-week only.
	specialLastWeekday
)

// specialAtom is one deferred atom, validated and decomposed at build time
// and resolved against a concrete moment at evaluation time.
type specialAtom struct {
	kind specialKind
	dow  int // D for D#N and DL
	n    int // N for %N, D#N and NW
}

// classifySpecial validates an atom containing any of % # L W against the
// grammar allowed in the given field.
func classifySpecial(field Field, atom string) (specialAtom, error) {
	bad := func() (specialAtom, error) {
		return specialAtom{}, parseErrorf("unsupported atom %q in %s field", atom, field)
	}

	if strings.HasPrefix(atom, "%") {
		n, ok := atoiDigits(atom[1:])
		if !ok || n < 1 {
			return bad()
		}
		return specialAtom{kind: specialPeriodic, n: n}, nil
	}

	switch field {
	case DayOfWeek:
		if len(atom) == 3 && atom[1] == '#' {
			d, okD := atoiDigits(atom[:1])
			n, okN := atoiDigits(atom[2:])
			if !okD || !okN || d > 6 || n < 1 {
				return bad()
			}
			return specialAtom{kind: specialNthWeekday, dow: d, n: n}, nil
		}
		if strings.HasSuffix(atom, "L") {
			d, ok := atoiDigits(atom[:len(atom)-1])
			if !ok || d > 6 {
				return bad()
			}
			return specialAtom{kind: specialLastWeekday, dow: d}, nil
		}
	case DayOfMonth:
		if strings.HasSuffix(atom, "L") {
			prefix := atom[:len(atom)-1]
			if prefix != "" && !isDigits(prefix) {
				return bad()
			}
			return specialAtom{kind: specialLastDay}, nil
		}
		if strings.HasSuffix(atom, "W") {
			n, ok := atoiDigits(atom[:len(atom)-1])
			if !ok || n < 1 || n > 31 {
				return bad()
			}
			return specialAtom{kind: specialNearestWeekday, n: n}, nil
		}
	}
	return bad()
}

func atoiDigits(s string) (int, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
