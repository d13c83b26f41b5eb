// Package crontab loads schedule files: one expression per line with an
// optional command payload, blank lines and # comments ignored.
package crontab

import (
	"fmt"
	"os"
	"strings"

	"tickd/pkg/cronexpr"
)

// Entry is one successfully parsed schedule line.
type Entry struct {
	// Line is the 1-based position in the file.
	Line int
	// Raw is the trimmed source line.
	Raw string
	// Expr is the compiled schedule.
	Expr *cronexpr.Expression
	// Schedule is the normalized five-field form, payload excluded.
	Schedule string
	// Command is the payload with surrounding whitespace removed, ready
	// for the shell. May be empty.
	Command string
}

// LineError is a schedule line that failed to parse. It never aborts a
// load; the rest of the file is still usable.
type LineError struct {
	Line int
	Raw  string
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// File is the result of one load: everything that parsed plus everything
// that did not.
type File struct {
	Path    string
	Entries []Entry
	Errors  []LineError
}

// Load reads and parses the crontab at path. The returned error is only a
// file-level read failure; per-line problems are collected in File.Errors.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &File{Path: path}
	for i, raw := range strings.Split(string(b), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		expr, err := cronexpr.Parse(line)
		if err != nil {
			f.Errors = append(f.Errors, LineError{Line: i + 1, Raw: line, Err: err})
			continue
		}
		f.Entries = append(f.Entries, Entry{
			Line:     i + 1,
			Raw:      line,
			Expr:     expr,
			Schedule: scheduleText(expr),
			Command:  strings.TrimSpace(expr.Payload()),
		})
	}
	return f, nil
}

// scheduleText renders just the five normalized fields, without the payload.
func scheduleText(e *cronexpr.Expression) string {
	fields := make([]string, 0, 5)
	for f := cronexpr.Minute; f <= cronexpr.DayOfWeek; f++ {
		fields = append(fields, e.FieldText(f))
	}
	return strings.Join(fields, " ")
}
