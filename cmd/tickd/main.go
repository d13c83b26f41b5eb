package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tickd/internal/config"
	"tickd/internal/crontab"
	"tickd/internal/daemon"
)

func main() {
	var (
		cfgPath string
		check   bool
	)
	flag.StringVar(&cfgPath, "config", "./config.json", "path to config file (json or yaml)")
	flag.BoolVar(&check, "check", false, "validate config and crontab, then exit")
	flag.Parse()

	if check {
		os.Exit(runCheck(cfgPath))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := daemon.New(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if err := app.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		os.Exit(1)
	}

	// Block until a signal arrives or the supervisor dies on its own.
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	_ = app.Stop(stopCtx)

	if err := app.Err(); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

// runCheck validates the config and the crontab it points at, reporting
// every bad line rather than stopping at the first.
func runCheck(cfgPath string) int {
	cfg, err := config.NewManager(cfgPath).Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	f, err := crontab.Load(cfg.Crontab.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crontab:", err)
		return 1
	}
	for _, le := range f.Errors {
		fmt.Fprintf(os.Stderr, "%s:%d: %v\n", f.Path, le.Line, le.Err)
	}
	fmt.Printf("%s: %d entries, %d errors\n", f.Path, len(f.Entries), len(f.Errors))
	if len(f.Errors) > 0 {
		return 1
	}
	return 0
}
