package cronexpr

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

// For the grammar both implementations accept, a minute matches here
// exactly when it is an activation time of robfig's standard schedule.
func TestMatchTimeAgreesWithRobfigCron(t *testing.T) {
	t.Parallel()
	exprs := []string{
		"* * * * *",
		"*/15 * * * *",
		"0 0 * * *",
		"30 6 * * 1",
		"0 0 1 1 *",
		"0 12 1-7 * *",
		"0 12 */2 * *",
		"5,20,35,50 8-18 * * 1-5",
		"0 0 15 * 1",
		"0 9 * 2 *",
		"0 8 * * mon-fri",
	}
	windows := []struct {
		start time.Time
		days  int
	}{
		{start: time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC), days: 4},
		{start: time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), days: 7},
	}

	for _, expr := range exprs {
		ours := mustParse(t, expr)
		theirs, err := cron.ParseStandard("CRON_TZ=UTC " + expr)
		if err != nil {
			t.Fatalf("ParseStandard(%q) error: %v", expr, err)
		}
		for _, w := range windows {
			for i := 0; i < w.days*24*60; i++ {
				tm := w.start.Add(time.Duration(i) * time.Minute)
				want := theirs.Next(tm.Add(-time.Second)).Equal(tm)
				if got := ours.MatchTime(tm); got != want {
					t.Fatalf("%q at %s: Matches = %v, robfig = %v", expr, tm, got, want)
				}
			}
		}
	}
}
