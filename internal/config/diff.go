package config

import (
	"sort"
	"strings"

	"tickd/pkg/logx"
)

// SummarizeChange returns a compact sorted list of changed sections plus
// structured attrs describing the new values, suitable for one reload log
// line.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if strings.TrimSpace(oldCfg.Crontab.Path) != strings.TrimSpace(newCfg.Crontab.Path) {
		changed = append(changed, "crontab")
		attrs = append(attrs,
			logx.String("crontab.path", strings.TrimSpace(newCfg.Crontab.Path)),
		)
	}

	if oldCfg.Runner != newCfg.Runner {
		changed = append(changed, "runner")
		attrs = append(attrs,
			logx.Duration("runner.tick_interval", newCfg.Runner.TickIntervalOrDefault()),
			logx.Duration("runner.job_timeout", newCfg.Runner.JobTimeoutOrZero()),
			logx.String("runner.timezone", strings.TrimSpace(newCfg.Runner.Timezone)),
			logx.Bool("runner.shell_set", strings.TrimSpace(newCfg.Runner.Shell) != ""),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// Nil storage means disabled; compare through a zero value so turning
	// the section on or off registers as a change.
	oldS, newS := StorageConfig{}, StorageConfig{}
	if oldCfg.Storage != nil {
		oldS = *oldCfg.Storage
	}
	if newCfg.Storage != nil {
		newS = *newCfg.Storage
	}
	if oldS != newS || (oldCfg.Storage == nil) != (newCfg.Storage == nil) {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.Bool("storage.enabled", newCfg.Storage != nil),
			logx.String("storage.driver", strings.TrimSpace(newS.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(newS.Path) != ""),
			logx.Int("storage.max_runs", newS.MaxRuns),
		)
	}

	if oldCfg.Pprof != newCfg.Pprof {
		changed = append(changed, "pprof")
		attrs = append(attrs,
			logx.Bool("pprof.enabled", newCfg.Pprof.Enabled),
			logx.String("pprof.addr", strings.TrimSpace(newCfg.Pprof.Addr)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
