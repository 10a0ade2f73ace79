package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lipidgenesis/internal/cmd"
)

// version is set via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := cmd.Execute(ctx, version, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "lipidgenesis: %v\n", err)
		stop()
		os.Exit(1)
	}
}
