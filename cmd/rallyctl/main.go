package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rallyboard/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Stderr.WriteString("rallyctl: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
