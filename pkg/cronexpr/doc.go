// Package cronexpr parses crontab-style schedule expressions and decides
// whether a given calendar moment satisfies them.
//
// An expression is five whitespace-separated fields (minute, hour,
// day-of-month, month, day-of-week) followed by an optional free-text
// payload (typically the command to run). Beyond plain values, ranges
// and steps, the syntax supports:
//   - macros: @yearly, @monthly, @weekly, @daily, @midnight, @hourly
//   - %N: epoch-relative periodicity (every N minutes/hours/days/months)
//   - D#N: the Nth weekday D of the month (day-of-week field)
//   - NW: the business day nearest to day N (day-of-month field)
//   - L: the last day of the month; DL: the last weekday D of the month
//
// Expressions are immutable once built and safe for concurrent
// evaluation. The package performs no I/O and holds no clock; callers
// supply the moment to test.
package cronexpr
