package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the run-history store.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl with periodic rewrite)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver string
	Path   string

	// MaxRuns bounds how many run records are retained; 0 means the
	// driver default (1000).
	MaxRuns int

	BusyTimeout time.Duration // sqlite only; 0 means default
}

const defaultMaxRuns = 1000

func (c Config) maxRuns() int {
	if c.MaxRuns > 0 {
		return c.MaxRuns
	}
	return defaultMaxRuns
}

// Run records one command execution.
// Keep it compact and schema-stable.
type Run struct {
	At       time.Time
	Line     int
	Schedule string
	Command  string
	ExitCode int
	TookMS   int64
	Output   string
	Error    string
}

// Failed reports whether the run ended badly: a non-zero exit or a failure
// to start at all.
func (r Run) Failed() bool { return r.ExitCode != 0 || r.Error != "" }

// Stats summarizes the retained history.
type Stats struct {
	Runs     int
	Failed   int
	OldestAt time.Time
	NewestAt time.Time
}
