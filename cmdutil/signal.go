package cmdutil

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

// SignalContext returns a context that is cancelled on the first interrupt or termination signal.
func SignalContext(ctx context.Context, log logrus.FieldLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, listenSignals()...)

	go func() {
		defer signal.Stop(ch)

		select {
		case sig := <-ch:
			if log != nil {
				log.WithField("signal", sig).Info("Closing with received signal.")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
