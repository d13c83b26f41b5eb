package daemon

import (
	"strings"
	"time"

	"tickd/internal/config"
	"tickd/internal/observability/pprof"
	"tickd/internal/runner"
	"tickd/internal/storage"
	"tickd/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapRunnerConfig(cfg *config.Config) runner.Config {
	// Validation already rejected bad timezones; a failure here can only
	// mean the host tz database changed underneath us, so fall back to UTC
	// rather than dropping the reload.
	loc, err := cfg.Runner.Location()
	if err != nil {
		loc = time.UTC
	}
	return runner.Config{
		CrontabPath:  cfg.Crontab.Path,
		TickInterval: cfg.Runner.TickIntervalOrDefault(),
		JobTimeout:   cfg.Runner.JobTimeoutOrZero(),
		Location:     loc,
		Shell:        cfg.Runner.Shell,
		BadLineEvery: cfg.Runner.BadLineLogEveryOrDefault(),
	}
}

func mapPprofConfig(cfg *config.Config) pprof.Config {
	return pprof.Config{
		Enabled:              cfg.Pprof.Enabled,
		Addr:                 strings.TrimSpace(cfg.Pprof.Addr),
		BlockProfileRate:     cfg.Pprof.BlockProfileRate,
		MutexProfileFraction: cfg.Pprof.MutexProfileFraction,
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool) {
	if cfg.Storage == nil {
		return storage.Config{}, false
	}
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		busy = 0
	}
	return storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		MaxRuns:     cfg.Storage.MaxRuns,
		BusyTimeout: busy,
	}, true
}
