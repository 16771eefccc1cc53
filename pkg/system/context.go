package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSignalShutdown returns a copy of the parent context which cancels
// itself when an interrupt or termination signal is captured. The returned
// cancel function cleans up the resources associated with this context and
// should be called as soon as the operations in this context complete.
func WithSignalShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-ch:
			cancel()

		// Clean-up goroutine if the context is canceled:
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()

	return ctx, cancel
}
