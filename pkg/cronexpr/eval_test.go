package cronexpr

import (
	"testing"
	"time"
)

func TestMatchesStaticFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		at   Moment
		want bool
	}{
		// 2010-09-15 is a Wednesday.
		{name: "exact hit", line: "30 6 15 9 3", at: Moment{2010, 9, 15, 6, 30}, want: true},
		{name: "wrong minute", line: "30 6 15 9 3", at: Moment{2010, 9, 15, 6, 31}, want: false},
		{name: "wrong hour", line: "30 6 15 9 3", at: Moment{2010, 9, 15, 7, 30}, want: false},
		{name: "wrong month", line: "30 6 15 9 3", at: Moment{2010, 10, 15, 6, 30}, want: false},

		{name: "quarter hour 0", line: "*/15 * * * *", at: Moment{2010, 9, 15, 6, 0}, want: true},
		{name: "quarter hour 15", line: "*/15 * * * *", at: Moment{2010, 9, 15, 6, 15}, want: true},
		{name: "quarter hour 45", line: "*/15 * * * *", at: Moment{2010, 9, 15, 6, 45}, want: true},
		{name: "quarter hour off", line: "*/15 * * * *", at: Moment{2010, 9, 15, 6, 7}, want: false},

		{name: "yearly hit", line: "@yearly", at: Moment{2011, 1, 1, 0, 0}, want: true},
		{name: "yearly wrong day", line: "@yearly", at: Moment{2011, 1, 2, 0, 0}, want: false},
		{name: "yearly wrong month", line: "@yearly", at: Moment{2011, 2, 1, 0, 0}, want: false},

		// 30-6 in the hour field keeps only the 0..6 segment.
		{name: "reversed hour range inside", line: "0 30-6 * * *", at: Moment{2010, 9, 15, 3, 0}, want: true},
		{name: "reversed hour range outside", line: "0 30-6 * * *", at: Moment{2010, 9, 15, 7, 0}, want: false},

		{name: "dom only miss", line: "0 0 15 * *", at: Moment{2010, 9, 14, 0, 0}, want: false},
		{name: "dom only hit", line: "0 0 15 * *", at: Moment{2010, 9, 15, 0, 0}, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.line)
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("Matches(%+v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestMatchesDomDowAlternative(t *testing.T) {
	t.Parallel()
	// Fires on the 15th of every month and additionally on every Monday.
	e := mustParse(t, "0 0 15 * 1")

	tests := []struct {
		name string
		at   Moment
		want bool
	}{
		{name: "monday not the 15th", at: Moment{2010, 9, 13, 0, 0}, want: true},
		{name: "the 15th not a monday", at: Moment{2010, 9, 15, 0, 0}, want: true},
		{name: "another monday", at: Moment{2010, 9, 20, 0, 0}, want: true},
		{name: "neither", at: Moment{2010, 9, 14, 0, 0}, want: false},
		{name: "monday wrong hour", at: Moment{2010, 9, 13, 1, 0}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("Matches(%+v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestMatchesDowOnly(t *testing.T) {
	t.Parallel()
	// A bare * day-of-month defers entirely to the restricted day-of-week.
	e := mustParse(t, "0 0 * * 1")

	if !e.Matches(Moment{2010, 9, 13, 0, 0}) {
		t.Fatal("Monday should match")
	}
	if e.Matches(Moment{2010, 9, 14, 0, 0}) {
		t.Fatal("Tuesday should not match")
	}
}

func TestMatchesNthWeekday(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "0 0 * * 1#2")

	// September 2010 starts on a Wednesday; Mondays fall on 6, 13, 20, 27.
	tests := []struct {
		name string
		at   Moment
		want bool
	}{
		{name: "second monday", at: Moment{2010, 9, 13, 0, 0}, want: true},
		{name: "first monday", at: Moment{2010, 9, 6, 0, 0}, want: false},
		{name: "third monday", at: Moment{2010, 9, 20, 0, 0}, want: false},
		{name: "not a monday", at: Moment{2010, 9, 14, 0, 0}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("Matches(%+v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestMatchesLastDayOfMonth(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "0 0 L * *")

	tests := []struct {
		name string
		at   Moment
		want bool
	}{
		{name: "leap february", at: Moment{2012, 2, 29, 0, 0}, want: true},
		{name: "leap february not last", at: Moment{2012, 2, 28, 0, 0}, want: false},
		{name: "plain february", at: Moment{2011, 2, 28, 0, 0}, want: true},
		{name: "thirty day month", at: Moment{2010, 9, 30, 0, 0}, want: true},
		{name: "thirty one day month", at: Moment{2010, 10, 31, 0, 0}, want: true},
		{name: "mid month", at: Moment{2010, 10, 15, 0, 0}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("Matches(%+v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	// The digit prefix is ignored: 5L means the same as L.
	prefixed := mustParse(t, "0 0 5L * *")
	if !prefixed.Matches(Moment{2010, 9, 30, 0, 0}) {
		t.Fatal("5L should still match the last day of the month")
	}
}

func TestMatchesLastWeekday(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "0 0 * * 5L")

	// September 2010 Fridays: 3, 10, 17, 24. May 2010 Fridays: 7, 14, 21, 28.
	tests := []struct {
		name string
		at   Moment
		want bool
	}{
		{name: "last friday of september", at: Moment{2010, 9, 24, 0, 0}, want: true},
		{name: "earlier friday", at: Moment{2010, 9, 17, 0, 0}, want: false},
		{name: "last friday of may", at: Moment{2010, 5, 28, 0, 0}, want: true},
		{name: "last day but not friday", at: Moment{2010, 9, 30, 0, 0}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("Matches(%+v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestMatchesNearestWeekday(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		at   Moment
		want bool
	}{
		// 2011-01-15 is a Saturday: 15W resolves to Friday the 14th.
		{name: "saturday shifts back", line: "0 0 15W * *", at: Moment{2011, 1, 14, 0, 0}, want: true},
		{name: "saturday itself misses", line: "0 0 15W * *", at: Moment{2011, 1, 15, 0, 0}, want: false},
		{name: "thursday before misses", line: "0 0 15W * *", at: Moment{2011, 1, 13, 0, 0}, want: false},

		// 2011-01-01 is a Saturday: 1W cannot leave the month backwards,
		// so it resolves to Monday the 3rd.
		{name: "first saturday shifts forward", line: "0 0 1W * *", at: Moment{2011, 1, 3, 0, 0}, want: true},
		{name: "first saturday itself misses", line: "0 0 1W * *", at: Moment{2011, 1, 1, 0, 0}, want: false},

		// 2010-08-01 is a Sunday: 1W resolves to Monday the 2nd.
		{name: "sunday shifts forward", line: "0 0 1W * *", at: Moment{2010, 8, 2, 0, 0}, want: true},
		{name: "sunday itself misses", line: "0 0 1W * *", at: Moment{2010, 8, 1, 0, 0}, want: false},

		// 2010-10-31 is a Sunday at the end of the month: 31W cannot move
		// forward, so it resolves to Friday the 29th.
		{name: "sunday at month end shifts back", line: "0 0 31W * *", at: Moment{2010, 10, 29, 0, 0}, want: true},
		{name: "sunday at month end misses", line: "0 0 31W * *", at: Moment{2010, 10, 31, 0, 0}, want: false},

		// 31W in a short month clamps to the last day first.
		{name: "clamped to short month", line: "0 0 31W * *", at: Moment{2011, 2, 28, 0, 0}, want: true},

		// A weekday target needs no shift at all.
		{name: "weekday stays put", line: "0 0 14W * *", at: Moment{2010, 9, 14, 0, 0}, want: true},
		{name: "weekday stays put miss", line: "0 0 14W * *", at: Moment{2010, 9, 15, 0, 0}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.line)
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("%s: Matches(%+v) = %v, want %v", tt.line, tt.at, got, tt.want)
			}
		})
	}
}

func TestMatchesPeriodic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		at   Moment
		want bool
	}{
		{name: "minute delta zero", line: "%2 * * * *", at: Moment{1970, 1, 1, 0, 0}, want: true},
		{name: "minute delta one", line: "%2 * * * *", at: Moment{1970, 1, 1, 0, 1}, want: false},
		{name: "minute delta two", line: "%2 * * * *", at: Moment{1970, 1, 1, 0, 2}, want: true},
		{name: "minute parity across hours", line: "%2 * * * *", at: Moment{1970, 1, 1, 1, 1}, want: false},

		// Deltas are signed; divisibility still works before the epoch.
		{name: "minute before epoch odd", line: "%2 * * * *", at: Moment{1969, 12, 31, 23, 59}, want: false},
		{name: "minute before epoch even", line: "%2 * * * *", at: Moment{1969, 12, 31, 23, 58}, want: true},

		{name: "day delta zero", line: "0 0 %3 * *", at: Moment{1970, 1, 1, 0, 0}, want: true},
		{name: "day delta one", line: "0 0 %3 * *", at: Moment{1970, 1, 2, 0, 0}, want: false},
		{name: "day delta three", line: "0 0 %3 * *", at: Moment{1970, 1, 4, 0, 0}, want: true},

		{name: "month delta zero", line: "0 0 1 %2 *", at: Moment{1970, 1, 1, 0, 0}, want: true},
		{name: "month delta one", line: "0 0 1 %2 *", at: Moment{1970, 2, 1, 0, 0}, want: false},
		{name: "month delta two", line: "0 0 1 %2 *", at: Moment{1970, 3, 1, 0, 0}, want: true},

		// In the day-of-week field the delta is still counted in days.
		{name: "dow field counts days", line: "0 0 * * %2", at: Moment{1970, 1, 1, 0, 0}, want: true},
		{name: "dow field counts days off", line: "0 0 * * %2", at: Moment{1970, 1, 2, 0, 0}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.line)
			if got := e.Matches(tt.at); got != tt.want {
				t.Fatalf("%s: Matches(%+v) = %v, want %v", tt.line, tt.at, got, tt.want)
			}
		})
	}
}

func TestMatchesAtOffset(t *testing.T) {
	t.Parallel()
	// Hour deltas shift by the difference between the moment's offset and
	// the epoch's offset.
	e := mustParse(t, "0 %24 * * *")

	if !e.MatchesAt(Moment{1970, 1, 2, 0, 0}, 0) {
		t.Fatal("midnight at UTC should be a whole day from the epoch")
	}
	if e.MatchesAt(Moment{1970, 1, 2, 0, 0}, 2) {
		t.Fatal("midnight at +2 is not a whole day from the epoch")
	}
	if !e.MatchesAt(Moment{1970, 1, 2, 22, 0}, 2) {
		t.Fatal("22:00 at +2 is a whole day from the epoch")
	}
}

func TestMatchTime(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "30 14 * * *")

	if !e.MatchTime(time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)) {
		t.Fatal("expected match at 14:30")
	}
	if e.MatchTime(time.Date(2026, 8, 25, 14, 31, 0, 0, time.UTC)) {
		t.Fatal("no match at 14:31")
	}
	// Seconds are below the engine's granularity.
	if !e.MatchTime(time.Date(2026, 8, 25, 14, 30, 59, 0, time.UTC)) {
		t.Fatal("seconds should be ignored")
	}

	// The zone offset of t feeds the evaluation.
	periodic := mustParse(t, "0 %24 * * *")
	plus2 := time.FixedZone("plus2", 2*3600)
	if !periodic.MatchTime(time.Date(1970, 1, 2, 22, 0, 0, 0, plus2)) {
		t.Fatal("22:00 at +2 should match")
	}
	if periodic.MatchTime(time.Date(1970, 1, 2, 0, 0, 0, 0, plus2)) {
		t.Fatal("midnight at +2 should not match")
	}
}

func TestMatchesConcurrent(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "*/5 8-18 * * mon-fri")

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 1000; i++ {
				at := Moment{2026, 8, 25, 10, (i * 5) % 60}
				if !e.Matches(at) {
					panic("concurrent evaluation diverged")
				}
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}
