package cronexpr

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, line string) *Expression {
	t.Helper()
	e, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", line, err)
	}
	return e
}

func TestParseMacros(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "yearly", line: "@yearly", want: "0 0 1 1 *"},
		{name: "anually alias", line: "@anually", want: "0 0 1 1 *"},
		{name: "monthly", line: "@monthly", want: "0 0 1 * *"},
		{name: "weekly", line: "@weekly", want: "0 0 * * 0"},
		{name: "daily", line: "@daily", want: "0 0 * * *"},
		{name: "midnight", line: "@midnight", want: "0 0 * * *"},
		{name: "hourly", line: "@hourly", want: "0 * * * *"},
		{name: "hourly with payload", line: "@hourly run backup", want: "0 * * * * run backup"},
		// Substitution is replace-all, so a macro token inside the payload
		// is expanded too.
		{name: "macro inside payload", line: "@daily echo @daily", want: "0 0 * * * echo 0 0 * * *"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.line)
			if got := e.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMacroUnknown(t *testing.T) {
	t.Parallel()
	// The alias list is exact: the correctly spelled @annually is not in it.
	if _, err := Parse("@annually"); err == nil {
		t.Fatal("expected error for @annually")
	}
	// A recognized prefix with trailing garbage expands anyway and then
	// fails on the mangled day-of-week field.
	if _, err := Parse("@dailyfoo"); err == nil {
		t.Fatal("expected error for @dailyfoo")
	}
}

func TestParseNormalization(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		line  string
		field Field
		want  string
	}{
		{name: "month names", line: "0 0 * jan-mar *", field: Month, want: "1-3"},
		{name: "month names upper", line: "0 0 * JAN,DEC *", field: Month, want: "1,12"},
		{name: "dow names", line: "0 0 * * sat", field: DayOfWeek, want: "6"},
		{name: "dow names mixed case", line: "0 0 * * Mon-Fri", field: DayOfWeek, want: "1-5"},
		{name: "dow seven is sunday", line: "0 0 * * 7", field: DayOfWeek, want: "0"},
		{name: "dow question mark", line: "0 0 * * ?", field: DayOfWeek, want: "*"},
		{name: "dom question mark", line: "0 0 ? * *", field: DayOfMonth, want: "*"},
		{name: "dom upper cased", line: "0 0 15w * *", field: DayOfMonth, want: "15W"},
		{name: "dow upper cased", line: "0 0 * * 5l", field: DayOfWeek, want: "5L"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.line)
			if got := e.FieldText(tt.field); got != tt.want {
				t.Fatalf("FieldText(%v) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "no payload", line: "0 0 * * *", want: ""},
		{name: "trailing spaces only", line: "0 0 * * *   ", want: ""},
		{name: "simple", line: "0 0 * * * echo hi", want: "echo hi"},
		{name: "internal whitespace kept", line: "0 0 * * *  echo   a  b ", want: "echo   a  b "},
		{name: "tabs between fields", line: "0\t0\t*\t*\t*\tcmd", want: "cmd"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.line)
			if got := e.Payload(); got != tt.want {
				t.Fatalf("Payload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
	}{
		{name: "empty", line: ""},
		{name: "four fields", line: "* * * *"},
		{name: "star with others", line: "*,5 * * * *"},
		{name: "star with others in dow", line: "0 0 * * 1,*"},
		{name: "minute above range", line: "60 * * * *"},
		{name: "dom zero", line: "* * 0 * *"},
		{name: "month thirteen", line: "* * * 13 *"},
		{name: "garbage atom", line: "* * * * x"},
		{name: "empty atom", line: "5, * * * *"},
		{name: "hash in minute", line: "1#2 * * * *"},
		{name: "weekday special in dom", line: "0 0 1#2 * *"},
		{name: "nearest weekday in dow", line: "0 0 * * 15W"},
		{name: "percent zero", line: "%0 * * * *"},
		{name: "percent without digits", line: "% * * * *"},
		{name: "nth weekday out of range", line: "0 0 * * 8#1"},
		{name: "nth occurrence zero", line: "0 0 * * 1#0"},
		{name: "nth weekday too long", line: "0 0 * * 12#3"},
		{name: "nearest weekday zero", line: "0 0 0W * *"},
		{name: "nearest weekday above range", line: "0 0 32W * *"},
		{name: "bare W", line: "0 0 W * *"},
		{name: "last weekday out of range", line: "0 0 * * 8L"},
		{name: "bare L in dow", line: "0 0 * * L"},
		{name: "letter prefix on dom L", line: "0 0 XL * *"},
		// 7 becomes 0 in the day-of-week field before compilation, so a
		// step of 7 turns into a zero step.
		{name: "dow step seven", line: "0 0 * * */7"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.line)
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Parse(%q) error %v does not wrap ErrParse", tt.line, err)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()
	lines := []string{
		"*/15 * * * *",
		"0 0 15 * 1",
		"@weekly",
		"0 0 * jan-mar sat do the thing",
		"30 6 1,15 * * backup --full",
		"%10 * * * *",
		"0 0 L * *",
		"0 0 * * 1#2",
	}

	for _, line := range lines {
		e := mustParse(t, line)
		again := mustParse(t, e.String())
		if got := again.String(); got != e.String() {
			t.Fatalf("reparse of %q: String() = %q, want %q", line, got, e.String())
		}
	}
}

func TestWithFieldText(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "0 12 * * * job")

	moved, err := e.WithFieldText(Minute, "30")
	if err != nil {
		t.Fatalf("WithFieldText error: %v", err)
	}
	if got := moved.FieldText(Minute); got != "30" {
		t.Fatalf("FieldText(Minute) = %q, want %q", got, "30")
	}
	if got := moved.Payload(); got != "job" {
		t.Fatalf("Payload() = %q, want %q", got, "job")
	}

	at := Moment{Year: 2026, Month: 8, Day: 25, Hour: 12, Minute: 30}
	if !moved.Matches(at) {
		t.Fatal("rebuilt expression should match minute 30")
	}
	if moved.Matches(Moment{Year: 2026, Month: 8, Day: 25, Hour: 12, Minute: 0}) {
		t.Fatal("rebuilt expression should not match minute 0")
	}

	// The receiver is untouched.
	if got := e.FieldText(Minute); got != "0" {
		t.Fatalf("original FieldText(Minute) = %q, want %q", got, "0")
	}
	if !e.Matches(Moment{Year: 2026, Month: 8, Day: 25, Hour: 12, Minute: 0}) {
		t.Fatal("original expression should still match minute 0")
	}

	if _, err := e.WithFieldText(Minute, "61"); err == nil {
		t.Fatal("expected error for out-of-range replacement")
	}
	if _, err := e.WithFieldText(Field(9), "0"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestWithFieldTextReappliesDomDeferral(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "0 0 1 * 1")

	// 2026-06-01 is a Monday and the 1st: both sides of the OR hold.
	if !e.Matches(Moment{Year: 2026, Month: 6, Day: 1}) {
		t.Fatal("expected match on the 1st")
	}

	// Widening day-of-month to * hands the decision to day-of-week alone.
	wide, err := e.WithFieldText(DayOfMonth, "*")
	if err != nil {
		t.Fatalf("WithFieldText error: %v", err)
	}
	if wide.Matches(Moment{Year: 2026, Month: 6, Day: 2}) {
		t.Fatal("Tuesday should not match a Monday-only schedule")
	}
	if !wide.Matches(Moment{Year: 2026, Month: 6, Day: 8}) {
		t.Fatal("Monday should match")
	}
}

func TestParseWithEpoch(t *testing.T) {
	t.Parallel()
	epoch := Epoch{Year: 2000, Month: 1, Day: 1, UTCOffset: 0}
	e, err := ParseWithEpoch("%2 * * * *", epoch)
	if err != nil {
		t.Fatalf("ParseWithEpoch error: %v", err)
	}
	if got := e.Epoch(); got != epoch {
		t.Fatalf("Epoch() = %+v, want %+v", got, epoch)
	}

	// Minute zero of the epoch itself is delta zero.
	if !e.Matches(Moment{Year: 2000, Month: 1, Day: 1, Hour: 0, Minute: 0}) {
		t.Fatal("expected match at the epoch minute")
	}
	if e.Matches(Moment{Year: 2000, Month: 1, Day: 1, Hour: 0, Minute: 1}) {
		t.Fatal("odd minute after the epoch should not match")
	}
}
