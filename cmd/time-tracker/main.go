package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"time-tracker/internal/cli"
	"time-tracker/internal/config"
)

func main() {
	config.LoadDotEnv()

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
