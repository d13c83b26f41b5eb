package cronexpr

import "time"

// Matches reports whether the moment satisfies the expression, with the
// moment taken to be at UTC offset 0.
func (e *Expression) Matches(m Moment) bool { return e.MatchesAt(m, 0) }

// MatchTime reports whether the wall-clock minute of t satisfies the
// expression. The UTC offset is t's zone offset truncated to whole hours.
func (e *Expression) MatchTime(t time.Time) bool {
	_, off := t.Zone()
	return e.MatchesAt(MomentOf(t), off/3600)
}

// MatchesAt reports whether the moment satisfies the expression. utcOffset
// is the moment's offset east of UTC in whole hours; together with the
// epoch's offset it shifts the minute and hour deltas seen by %N atoms.
func (e *Expression) MatchesAt(m Moment, utcOffset int) bool {
	givenDate := time.Date(m.Year, time.Month(m.Month), m.Day, 0, 0, 0, 0, time.UTC)
	zeroDay := time.Date(e.epoch.Year, time.Month(e.epoch.Month), e.epoch.Day, 0, 0, 0, 0, time.UTC)
	lastDOM := lastDayOfMonth(m.Year, m.Month)

	givenDOW := int(givenDate.Weekday())
	firstDOW := mod7(givenDOW + 1 - m.Day)

	// Signed elapsed units since the epoch. The day delta is computed from
	// Unix seconds of the two UTC midnights; both are exact multiples of a
	// day apart, and the range is not limited to what a Duration can hold.
	utcDiff := utcOffset - e.epoch.UTCOffset
	monCount := (m.Year-e.epoch.Year)*12 + m.Month - e.epoch.Month
	dayCount := int((givenDate.Unix() - zeroDay.Unix()) / 86400)
	hourCount := m.Hour - e.epoch.Hour + dayCount*24 + utcDiff
	minCount := m.Minute - e.epoch.Minute + hourCount*60

	values := [5]int{m.Minute, m.Hour, m.Day, m.Month, givenDOW}
	deltas := [5]int{minCount, hourCount, dayCount, monCount, dayCount}

	domMatched := true
	for i := range e.fields {
		if _, ok := e.fields[i].static[values[i]]; ok {
			continue
		}

		matched := false
		for _, sp := range e.fields[i].specials {
			if sp.matches(deltas[i], m.Day, firstDOW, lastDOM) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		// Cross-field rule: a restricted day-of-month and a restricted
		// day-of-week are alternatives, not a conjunction. A day-of-month
		// miss is provisional while day-of-week is restricted; a
		// day-of-week miss falls back to the recorded day-of-month
		// outcome while day-of-month is restricted.
		switch {
		case Field(i) == DayOfMonth && e.fields[DayOfWeek].text != "*":
			domMatched = false
		case Field(i) == DayOfWeek && e.fields[DayOfMonth].text != "*":
			return domMatched
		default:
			return false
		}
	}
	return true
}

// matches resolves one special atom. delta is the field's elapsed-unit
// count since the epoch; day, firstDOW and lastDOM describe the moment's
// month. The calendar kinds compare against the day of month no matter
// which field the atom sits in.
func (s specialAtom) matches(delta, day, firstDOW, lastDOM int) bool {
	switch s.kind {
	case specialPeriodic:
		return delta%s.n == 0

	case specialNthWeekday:
		return mod7(s.dow-firstDOW)+1+7*(s.n-1) == day

	case specialNearestWeekday:
		target := s.n
		if target > lastDOM {
			target = lastDOM
		}
		switch mod7(firstDOW + target - 1) {
		case 0:
			// Sunday: shift to Monday unless that leaves the month.
			if target < lastDOM {
				target++
			} else {
				target -= 2
			}
		case 6:
			// Saturday: shift to Friday unless that leaves the month.
			if target > 1 {
				target--
			} else {
				target += 2
			}
		}
		return target == day && mod7(firstDOW+target-7) > 1

	case specialLastDay:
		return day == lastDOM

	case specialLastWeekday:
		target := mod7(s.dow-firstDOW) + 29
		if target > lastDOM {
			target -= 7
		}
		return target == day
	}
	return false
}

func mod7(x int) int { return ((x % 7) + 7) % 7 }

// lastDayOfMonth relies on time.Date normalizing day zero of the following
// month.
func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
