// Package systemd integrates with the service manager when the daemon
// runs under one: readiness and status notifications plus watchdog
// keepalive. Every call is a no-op outside a systemd unit (NOTIFY_SOCKET
// unset), so callers never need to guard.
package systemd

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// NotifyReady tells the service manager startup is complete.
func NotifyReady() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
}

// NotifyStopping announces that shutdown has begun.
func NotifyStopping() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}

// NotifyStatus publishes a one-line human-readable status.
func NotifyStatus(status string) {
	_, _ = daemon.SdNotify(false, "STATUS="+status)
}

// WatchdogInterval returns the keepalive interval to use (half the
// armed WatchdogSec), or 0 when no watchdog is configured.
func WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil || d <= 0 {
		return 0
	}
	return d / 2
}

// RunWatchdog sends keepalives until ctx is done. It returns immediately
// when no watchdog is armed, so it is safe to start unconditionally.
func RunWatchdog(ctx context.Context) {
	interval := WatchdogInterval()
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
