package cronexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrParse wraps every error returned from expression construction, so
// callers can match the whole class with errors.Is.
var ErrParse = errors.New("cronexpr: parse error")

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

// Field identifies one of the five schedule fields, in crontab order.
type Field int

const (
	Minute Field = iota
	Hour
	DayOfMonth
	Month
	DayOfWeek
)

func (f Field) String() string {
	switch f {
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case DayOfMonth:
		return "day-of-month"
	case Month:
		return "month"
	case DayOfWeek:
		return "day-of-week"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

type bounds struct{ min, max int }

// Inclusive numeric ranges per field. Day-of-week runs 0-6 with 0 = Sunday;
// a literal 7 is normalized to 0 before compilation.
var fieldBounds = [5]bounds{
	Minute:     {0, 59},
	Hour:       {0, 23},
	DayOfMonth: {1, 31},
	Month:      {1, 12},
	DayOfWeek:  {0, 6},
}

// Macro substitutions, checked in order; the first matching prefix wins and
// every occurrence of it in the line is replaced. "@anually" is intentionally
// misspelled: schedules in the field depend on that exact token.
var macros = []struct{ prefix, expansion string }{
	{"@yearly", "0 0 1 1 *"},
	{"@anually", "0 0 1 1 *"},
	{"@monthly", "0 0 1 * *"},
	{"@weekly", "0 0 * * 0"},
	{"@daily", "0 0 * * *"},
	{"@midnight", "0 0 * * *"},
	{"@hourly", "0 * * * *"},
}

var monthNames = []struct{ name, num string }{
	{"jan", "1"}, {"feb", "2"}, {"mar", "3"}, {"apr", "4"},
	{"may", "5"}, {"jun", "6"}, {"jul", "7"}, {"aug", "8"},
	{"sep", "9"}, {"oct", "10"}, {"nov", "11"}, {"dec", "12"},
}

var dowNames = []struct{ name, num string }{
	{"sun", "0"}, {"mon", "1"}, {"tue", "2"}, {"wed", "3"},
	{"thu", "4"}, {"fri", "5"}, {"sat", "6"},
}

// Epoch is the reference moment against which %N periodicity atoms measure
// elapsed minutes, hours, days and months. UTCOffset is in whole hours east
// of UTC.
type Epoch struct {
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int
	UTCOffset int
}

// UnixEpoch is 1970-01-01 00:00 at UTC+0, the default for Parse.
var UnixEpoch = Epoch{Year: 1970, Month: 1, Day: 1}

// Moment is one calendar minute, the granularity at which expressions are
// evaluated.
type Moment struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// MomentOf extracts the wall-clock components of t in t's location.
func MomentOf(t time.Time) Moment {
	return Moment{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// fieldSpec is one compiled field: the normalized text, the precomputed set
// of statically matching values, and the special atoms deferred to
// evaluation time.
type fieldSpec struct {
	text     string
	static   map[int]struct{}
	specials []specialAtom
}

// Expression is a compiled schedule line. It is immutable; the only way to
// alter a field is WithFieldText, which builds a fresh Expression.
type Expression struct {
	fields  [5]fieldSpec
	payload string
	epoch   Epoch
}

// Parse compiles one schedule line against the Unix epoch.
func Parse(line string) (*Expression, error) {
	return ParseWithEpoch(line, UnixEpoch)
}

// ParseWithEpoch compiles one schedule line. The epoch only affects %N
// periodicity atoms.
func ParseWithEpoch(line string, epoch Epoch) (*Expression, error) {
	expanded := expandMacros(line)

	parts := splitLine(expanded, 5)
	if len(parts) < 5 {
		return nil, parseErrorf("want five fields, got %d in %q", len(parts), line)
	}
	payload := ""
	if len(parts) == 6 {
		payload = parts[5]
	}
	minutes, hours, dom, months, dow := parts[0], parts[1], parts[2], parts[3], parts[4]

	// Symbol normalization happens on the raw field text, before names.
	dow = strings.ReplaceAll(dow, "7", "0")
	dow = strings.ReplaceAll(dow, "?", "*")
	dom = strings.ReplaceAll(dom, "?", "*")

	months = strings.ToLower(months)
	for _, m := range monthNames {
		months = strings.ReplaceAll(months, m.name, m.num)
	}
	dow = strings.ToLower(dow)
	for _, d := range dowNames {
		dow = strings.ReplaceAll(dow, d.name, d.num)
	}

	e := &Expression{payload: payload, epoch: epoch}
	e.fields[Minute].text = minutes
	e.fields[Hour].text = hours
	e.fields[DayOfMonth].text = strings.ToUpper(dom)
	e.fields[Month].text = strings.ToUpper(months)
	e.fields[DayOfWeek].text = strings.ToUpper(dow)

	if err := e.recompute(); err != nil {
		return nil, err
	}
	return e, nil
}

// expandMacros rewrites a recognized shorthand prefix into its five-field
// long form. The match is a prefix test on the raw line, not a whole-token
// test, and the replacement applies to every occurrence of the token.
func expandMacros(line string) string {
	for _, m := range macros {
		if strings.HasPrefix(line, m.prefix) {
			return strings.ReplaceAll(line, m.prefix, m.expansion)
		}
	}
	return line
}

// splitLine splits on runs of whitespace into at most maxSplits fields plus
// a remainder that keeps its internal and trailing whitespace.
func splitLine(s string, maxSplits int) []string {
	var parts []string
	i := 0
	for len(parts) < maxSplits {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return parts
		}
		j := i
		for j < len(s) && !isSpace(s[j]) {
			j++
		}
		parts = append(parts, s[i:j])
		i = j
	}
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i < len(s) {
		parts = append(parts, s[i:])
	}
	return parts
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// recompute rebuilds the static sets and special-atom lists of all five
// fields from their current text.
func (e *Expression) recompute() error {
	for i := range e.fields {
		fs, err := buildField(Field(i), e.fields[i].text)
		if err != nil {
			return err
		}
		e.fields[i] = fs
	}
	// An unrestricted day-of-month defers entirely to a restricted
	// day-of-week: its static set is emptied so only the day-of-week field
	// decides (see the cross-field rule in MatchesAt).
	if e.fields[DayOfMonth].text == "*" && e.fields[DayOfWeek].text != "*" {
		e.fields[DayOfMonth].static = map[int]struct{}{}
	}
	return nil
}

func buildField(kind Field, text string) (fieldSpec, error) {
	atoms := strings.Split(text, ",")
	if len(atoms) > 1 {
		for _, a := range atoms {
			if a == "*" {
				return fieldSpec{}, parseErrorf(`"*" must be alone in a field`)
			}
		}
	}

	b := fieldBounds[kind]
	fs := fieldSpec{text: text, static: make(map[int]struct{})}
	for _, atom := range atoms {
		if strings.ContainsAny(atom, "%#LW") {
			sp, err := classifySpecial(kind, atom)
			if err != nil {
				return fieldSpec{}, err
			}
			fs.specials = append(fs.specials, sp)
			continue
		}
		vals, err := compileAtom(atom, b.min, b.max)
		if err != nil {
			return fieldSpec{}, err
		}
		for v := range vals {
			fs.static[v] = struct{}{}
		}
	}
	return fs, nil
}

// WithFieldText returns a new Expression with one field's text replaced and
// every field recompiled. The replacement must already be in normalized form
// (numeric names, no '?'); it goes through atom compilation only.
func (e *Expression) WithFieldText(f Field, text string) (*Expression, error) {
	if f < Minute || f > DayOfWeek {
		return nil, parseErrorf("no such field %d", int(f))
	}
	clone := &Expression{payload: e.payload, epoch: e.epoch}
	for i := range e.fields {
		clone.fields[i].text = e.fields[i].text
	}
	clone.fields[f].text = text
	if err := clone.recompute(); err != nil {
		return nil, err
	}
	return clone, nil
}

// Payload returns the free text after the fifth field, verbatim.
func (e *Expression) Payload() string { return e.payload }

// Epoch returns the reference moment used by %N atoms.
func (e *Expression) Epoch() Epoch { return e.epoch }

// FieldText returns the normalized text of one field.
func (e *Expression) FieldText(f Field) string { return e.fields[f].text }

// String renders the five normalized fields plus the payload. The result
// parses back to an expression with identical matching behavior.
func (e *Expression) String() string {
	var b strings.Builder
	for i := range e.fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.fields[i].text)
	}
	if e.payload != "" {
		b.WriteByte(' ')
		b.WriteString(e.payload)
	}
	return b.String()
}
