package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

type Config struct {
	Crontab CrontabConfig  `json:"crontab"`
	Runner  RunnerConfig   `json:"runner"`
	Logging LoggingConfig  `json:"logging"`
	Storage *StorageConfig `json:"storage,omitempty"`
	Pprof   PprofConfig    `json:"pprof"`
}

// CrontabConfig points at the schedule file. The runner rereads it on every
// tick, so edits take effect without a reload signal.
type CrontabConfig struct {
	Path string `json:"path"`
}

// RunnerConfig controls the polling loop.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type RunnerConfig struct {
	// TickInterval is the poll period. Default: "60s".
	TickInterval string `json:"tick_interval,omitempty"`

	// JobTimeout bounds a single command execution. "0s" (the default)
	// means no limit, like classic cron.
	JobTimeout string `json:"job_timeout,omitempty"`

	// Timezone names the location whose wall clock schedules are matched
	// against: an IANA name, "Local", or "UTC". Default: "UTC".
	Timezone string `json:"timezone,omitempty"`

	// Shell overrides the command interpreter. Default: "/bin/sh" on
	// unix-like systems, "cmd" on Windows.
	Shell string `json:"shell,omitempty"`

	// BadLineLogEvery throttles repeated complaints about a crontab line
	// that fails to parse tick after tick. Default: "10m".
	BadLineLogEvery string `json:"bad_line_log_every,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional run-history store. Nil disables it.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./tickd_history" }
type StorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`

	// MaxRuns bounds how many run records are retained. 0 keeps the
	// driver default.
	MaxRuns int `json:"max_runs,omitempty"`

	// BusyTimeout is a Go duration string (sqlite driver only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// PprofConfig controls the optional debug HTTP listener.
type PprofConfig struct {
	Enabled bool `json:"enabled"`

	// Addr is the listen address. Default: "127.0.0.1:6060".
	Addr string `json:"addr,omitempty"`

	// BlockProfileRate and MutexProfileFraction set the runtime profiling
	// knobs; 0 leaves both off.
	BlockProfileRate     int `json:"block_profile_rate,omitempty"`
	MutexProfileFraction int `json:"mutex_profile_fraction,omitempty"`
}

const (
	DefaultTickInterval    = time.Minute
	DefaultBadLineLogEvery = 10 * time.Minute
)

// Validate checks everything that can be checked without touching the
// filesystem: durations, the timezone, the log level name, the storage
// driver. The crontab file itself may legitimately not exist yet.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Crontab.Path) == "" {
		return fmt.Errorf("crontab.path: required")
	}
	if _, err := ParseDurationField("runner.tick_interval", c.Runner.TickInterval); err != nil {
		return err
	}
	if _, err := ParseDurationField("runner.job_timeout", c.Runner.JobTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("runner.bad_line_log_every", c.Runner.BadLineLogEvery); err != nil {
		return err
	}
	if _, err := c.Runner.Location(); err != nil {
		return err
	}
	switch lvl := strings.ToLower(strings.TrimSpace(c.Logging.Level)); lvl {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if c.Storage != nil {
		switch d := strings.TrimSpace(c.Storage.Driver); d {
		case "file", "sqlite":
			if strings.TrimSpace(c.Storage.Path) == "" {
				return fmt.Errorf("storage.path: required when storage is configured")
			}
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
		if c.Storage.MaxRuns < 0 {
			return fmt.Errorf("storage.max_runs: must be >= 0")
		}
	}
	if c.Pprof.BlockProfileRate < 0 {
		return fmt.Errorf("pprof.block_profile_rate: must be >= 0")
	}
	if c.Pprof.MutexProfileFraction < 0 {
		return fmt.Errorf("pprof.mutex_profile_fraction: must be >= 0")
	}
	if addr := strings.TrimSpace(c.Pprof.Addr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("pprof.addr: invalid %q (expected host:port): %w", c.Pprof.Addr, err)
		}
	}
	return nil
}

// TickIntervalOrDefault returns the poll period, falling back to one minute.
func (r RunnerConfig) TickIntervalOrDefault() time.Duration {
	d, err := ParseDurationOrDefault("runner.tick_interval", r.TickInterval, DefaultTickInterval)
	if err != nil {
		return DefaultTickInterval
	}
	return d
}

// JobTimeoutOrZero returns the per-job limit; zero means unlimited.
func (r RunnerConfig) JobTimeoutOrZero() time.Duration {
	d, err := ParseDurationField("runner.job_timeout", r.JobTimeout)
	if err != nil {
		return 0
	}
	return d
}

// BadLineLogEveryOrDefault returns the bad-line log throttle period.
func (r RunnerConfig) BadLineLogEveryOrDefault() time.Duration {
	d, err := ParseDurationOrDefault("runner.bad_line_log_every", r.BadLineLogEvery, DefaultBadLineLogEvery)
	if err != nil {
		return DefaultBadLineLogEvery
	}
	return d
}

// Location resolves the runner timezone. The empty string and "UTC" both
// mean UTC; "Local" means the host zone.
func (r RunnerConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(r.Timezone)
	switch name {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("runner.timezone: %w", err)
	}
	return loc, nil
}
