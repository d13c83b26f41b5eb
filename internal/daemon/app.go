// Package daemon wires the process together: configuration with hot
// reload, logging, the optional run-history store, the event bus and the
// polling runner, all under one supervisor, with systemd notifications
// when running as a unit.
package daemon

import (
	"context"
	"fmt"
	"strings"

	"tickd/internal/config"
	"tickd/internal/eventbus"
	"tickd/internal/observability/pprof"
	"tickd/internal/runner"
	"tickd/internal/runtime/supervisor"
	"tickd/internal/storage"
	"tickd/pkg/logx"
	"tickd/pkg/systemd"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	run  *runner.Service
	prof *pprof.Server
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg))
	log = log.With(logx.String("comp", "daemon"))

	bus := eventbus.New()

	var store storage.Store
	if sc, enabled := mapStorageConfig(cfg); enabled {
		st, err := storage.Open(sc, logSvc.Logger().With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		store = st
		log.Info("run history enabled", logx.String("driver", sc.Driver))
	}

	run := runner.New(mapRunnerConfig(cfg), logSvc.Logger().With(logx.String("comp", "runner")), bus)
	prof := pprof.New(logSvc.Logger().With(logx.String("comp", "pprof")))

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		store:   store,
		run:     run,
		prof:    prof,
	}, nil
}

// Done is closed when the supervisor context is canceled (fatal error or
// Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor, if any.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.logs.Logger().With(logx.String("comp", "config")))
	// Reject bad hot-reloads before they are committed or published.
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return cfg.Validate()
	})

	// Subscribe the recorder before the first tick so no run is missed.
	if a.store != nil {
		events, unsub := a.bus.Subscribe(128)
		rec := newRecorder(a.store, a.log.With(logx.String("comp", "recorder")))
		a.sup.Go0("recorder", func(c context.Context) {
			defer unsub()
			rec.run(c, events)
		})
	}

	a.sup.GoRestart("runner", func(c context.Context) error {
		return a.run.Run(c)
	}, supervisor.WithPublishFirstError(true))

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(c, sub)
	})

	a.sup.Go0("watchdog", systemd.RunWatchdog)

	a.prof.Apply(ctx, mapPprofConfig(a.cfgm.Get()))

	systemd.NotifyReady()
	a.notifyStatus()
	a.log.Info("daemon started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	systemd.NotifyStopping()
	a.log.Info("stopping")

	err := a.sup.Stop(ctx)

	for _, ts := range a.sup.Snapshot() {
		if ts.Restarts > 0 || ts.Panics > 0 {
			a.log.Warn("task needed restarts",
				logx.String("task", ts.Name),
				logx.Uint64("restarts", ts.Restarts),
				logx.Uint64("panics", ts.Panics),
				logx.String("last_err", ts.LastErr))
		}
	}

	a.prof.Stop(ctx)

	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	_ = a.logs.Close()
	return err
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	last := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: only the newest config matters.
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						next = newer
					}
				default:
					goto APPLY
				}
			}
		APPLY:
			a.applyConfig(ctx, last, next)
			last = next
		}
	}
}

func (a *App) applyConfig(ctx context.Context, oldCfg, newCfg *config.Config) {
	changed, attrs := config.SummarizeChange(oldCfg, newCfg)
	if len(changed) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.Apply(mapLogConfig(newCfg))
	a.run.Apply(mapRunnerConfig(newCfg))
	a.prof.Apply(ctx, mapPprofConfig(newCfg))

	// The store is opened once at startup; swapping drivers mid-flight
	// would orphan the recorder subscription.
	for _, section := range changed {
		if section == "storage" {
			a.log.Warn("storage config changed; restart required for it to take effect")
			break
		}
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(changed, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
	a.notifyStatus()
}

func (a *App) notifyStatus() {
	cfg := a.cfgm.Get()
	if cfg == nil {
		return
	}
	systemd.NotifyStatus(fmt.Sprintf("polling %s every %s", cfg.Crontab.Path, cfg.Runner.TickIntervalOrDefault()))
}
