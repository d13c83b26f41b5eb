// Package runner polls a crontab file and executes due commands.
//
// One cooperative loop: every tick it rereads the schedule source,
// rebuilds the expressions and evaluates each against the current
// minute, running whatever matches synchronously through the host
// shell. A malformed or failing line never stops the rest of the file.
// There is no dedup and no catch-up: minutes that pass while a job is
// still running are not replayed.
package runner

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tickd/internal/crontab"
	"tickd/internal/eventbus"
	"tickd/pkg/logx"
)

const (
	defaultTickInterval = time.Minute
	defaultBadLineEvery = 10 * time.Minute

	// Limiter key for whole-file read failures; line keys carry a prefix
	// so the two namespaces cannot collide.
	fileKey = "file"
)

// Config is the resolved runner configuration. The daemon maps the file
// config onto this; zero values get defaults in New and Apply.
type Config struct {
	CrontabPath  string
	TickInterval time.Duration
	JobTimeout   time.Duration  // 0 = no timeout
	Location     *time.Location // nil = UTC
	Shell        string         // "" = platform default
	BadLineEvery time.Duration  // min interval between repeated complaints about one line
}

func (c *Config) withDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.BadLineEvery <= 0 {
		c.BadLineEvery = defaultBadLineEvery
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
}

// Service is the polling loop. Safe for concurrent Apply while Run is
// ticking.
type Service struct {
	log logx.Logger
	bus eventbus.Bus

	mu  sync.Mutex
	cfg Config

	// limiters throttle repeated complaints across ticks, one per broken
	// line (or the unreadable file) so a permanently bad line does not
	// log every minute.
	lmu      sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(cfg Config, log logx.Logger, bus eventbus.Bus) *Service {
	cfg.withDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:      log,
		bus:      bus,
		cfg:      cfg,
		limiters: map[string]*rate.Limiter{},
	}
}

// Apply swaps the configuration. The loop picks it up on the next tick;
// an interval change reprograms the ticker then.
func (s *Service) Apply(cfg Config) {
	cfg.withDefaults()
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Config returns the current effective configuration.
func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Run executes the polling loop until ctx is canceled. The first tick
// happens immediately.
func (s *Service) Run(ctx context.Context) error {
	interval := s.Config().TickInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("runner started",
		logx.String("crontab", s.Config().CrontabPath),
		logx.Duration("tick_interval", interval),
	)

	for {
		s.tick(ctx, time.Now())
		select {
		case <-ctx.Done():
			s.log.Info("runner stopped")
			return ctx.Err()
		case <-ticker.C:
		}
		if next := s.Config().TickInterval; next != interval {
			interval = next
			ticker.Reset(interval)
			s.log.Info("tick interval changed", logx.Duration("tick_interval", interval))
		}
	}
}

// tick loads the crontab once and runs every entry due at now.
func (s *Service) tick(ctx context.Context, now time.Time) {
	cfg := s.Config()

	file, err := crontab.Load(cfg.CrontabPath)
	if err != nil {
		if s.allow(fileKey, cfg.BadLineEvery) {
			s.log.Warn("crontab unreadable", logx.String("path", cfg.CrontabPath), logx.Err(err))
			s.publish(EventCrontabError, now, CrontabEvent{Path: cfg.CrontabPath, Err: err.Error()})
		}
		s.sweepLimiters(map[string]struct{}{fileKey: {}})
		return
	}

	seen := make(map[string]struct{}, len(file.Errors))
	for _, le := range file.Errors {
		key := "line:" + strconv.Itoa(le.Line) + ":" + le.Raw
		seen[key] = struct{}{}
		if s.allow(key, cfg.BadLineEvery) {
			s.log.Warn("crontab line skipped", logx.Int("line", le.Line), logx.String("raw", le.Raw), logx.Err(le.Err))
			s.publish(EventBadLine, now, LineEvent{Line: le.Line, Raw: le.Raw, Err: le.Err.Error()})
		}
	}
	s.sweepLimiters(seen)

	s.log.Debug("crontab loaded",
		logx.Int("entries", len(file.Entries)),
		logx.Int("bad_lines", len(file.Errors)),
	)

	local := now.In(cfg.Location)
	for _, ent := range file.Entries {
		if ctx.Err() != nil {
			return
		}
		// A schedule with no payload is legal; there is just nothing to run.
		if ent.Command == "" {
			continue
		}
		if !ent.Expr.MatchTime(local) {
			continue
		}
		s.runJob(ctx, cfg, ent)
	}
}

func (s *Service) runJob(ctx context.Context, cfg Config, ent crontab.Entry) {
	start := time.Now()
	ev := JobEvent{Line: ent.Line, Schedule: ent.Schedule, Command: ent.Command, Started: start}
	s.publish(EventJobStarted, start, ev)
	s.log.Debug("job started", logx.Int("line", ent.Line), logx.String("command", ent.Command))

	runCtx := ctx
	var cancel context.CancelFunc
	if cfg.JobTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cfg.JobTimeout)
	}
	out, exit, err := runCommand(runCtx, cfg.Shell, ent.Command)
	if cancel != nil {
		cancel()
	}

	dur := time.Since(start)
	ev.Duration = dur
	ev.ExitCode = exit
	ev.Output = out
	if err != nil {
		ev.Error = err.Error()
	}

	switch {
	case err != nil:
		s.log.Warn("job failed", logx.Int("line", ent.Line), logx.String("command", ent.Command), logx.Duration("dur", dur), logx.Err(err))
		s.publish(EventJobFailed, time.Now(), ev)
	case exit != 0:
		s.log.Warn("job exited nonzero", logx.Int("line", ent.Line), logx.String("command", ent.Command), logx.Int("exit_code", exit), logx.Duration("dur", dur))
		s.publish(EventJobFailed, time.Now(), ev)
	default:
		s.log.Info("job finished", logx.Int("line", ent.Line), logx.String("command", ent.Command), logx.Duration("dur", dur))
		s.publish(EventJobFinished, time.Now(), ev)
	}
}

func (s *Service) publish(typ string, at time.Time, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: at, Data: data})
}

// allow reports whether a complaint keyed by key may be logged now. Each
// key gets its own limiter so one noisy line cannot silence others.
func (s *Service) allow(key string, every time.Duration) bool {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	lim := s.limiters[key]
	if lim == nil {
		lim = rate.NewLimiter(rate.Every(every), 1)
		s.limiters[key] = lim
	}
	return lim.Allow()
}

// sweepLimiters drops limiters whose key was not seen this tick, so a
// line that is fixed and later breaks again complains immediately.
func (s *Service) sweepLimiters(seen map[string]struct{}) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for k := range s.limiters {
		if _, ok := seen[k]; !ok {
			delete(s.limiters, k)
		}
	}
}
