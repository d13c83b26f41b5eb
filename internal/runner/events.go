package runner

import "time"

// Event types published on the bus.
const (
	EventJobStarted   = "job.started"
	EventJobFinished  = "job.finished"
	EventJobFailed    = "job.failed"
	EventBadLine      = "crontab.badline"
	EventCrontabError = "crontab.error"
)

// JobEvent is the payload of job.* events. Started-only for job.started;
// the completion events carry the full record.
type JobEvent struct {
	Line     int           `json:"line"`
	Schedule string        `json:"schedule"`
	Command  string        `json:"command"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration,omitempty"`
	ExitCode int           `json:"exit_code,omitempty"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// LineEvent is the payload of crontab.badline events.
type LineEvent struct {
	Line int    `json:"line"`
	Raw  string `json:"raw"`
	Err  string `json:"err"`
}

// CrontabEvent is the payload of crontab.error events (the whole file
// was unreadable).
type CrontabEvent struct {
	Path string `json:"path"`
	Err  string `json:"err"`
}
