package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// errNonCompliant makes the process exit 1 without printing an error.
var errNonCompliant = errors.New("label is not compliant")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNonCompliant):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
}
