package daemon

import (
	"context"
	"time"

	"tickd/internal/eventbus"
	"tickd/internal/runner"
	"tickd/internal/storage"
	"tickd/pkg/logx"
)

// recorder drains job completion events into the run-history store. It is
// deliberately lossy under pressure (the bus drops rather than blocks):
// history is an observability aid, not a ledger.
type recorder struct {
	store storage.Store
	log   logx.Logger
}

func newRecorder(store storage.Store, log logx.Logger) *recorder {
	return &recorder{store: store, log: log}
}

// run consumes events until ctx is done or the subscription closes.
func (r *recorder) run(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			r.record(ctx, e)
		}
	}
}

func (r *recorder) record(ctx context.Context, e eventbus.Event) {
	if e.Type != runner.EventJobFinished && e.Type != runner.EventJobFailed {
		return
	}
	job, ok := e.Data.(runner.JobEvent)
	if !ok {
		return
	}

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := r.store.AppendRun(wctx, storage.Run{
		At:       job.Started,
		Line:     job.Line,
		Schedule: job.Schedule,
		Command:  job.Command,
		ExitCode: job.ExitCode,
		TookMS:   job.Duration.Milliseconds(),
		Output:   job.Output,
		Error:    job.Error,
	})
	if err != nil {
		r.log.Warn("run not recorded", logx.Int("line", job.Line), logx.Err(err))
	}
}
