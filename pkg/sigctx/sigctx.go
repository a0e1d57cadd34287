// Package sigctx ties a context to process shutdown signals.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// NotifyContext returns a copy of parent canceled on the first shutdown
// signal. Calling the returned func restores default signal handling.
func NotifyContext(
	parent context.Context,
) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
