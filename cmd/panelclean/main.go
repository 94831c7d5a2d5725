// Command panelclean derives lagged, smoothed and log-growth columns from a
// monthly entity panel in a single bounded-memory pass, and reports
// descriptive statistics and missing values for panel files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
