// Package metricsutil serves process metrics over HTTP.
package metricsutil

import (
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/skycoin/notify/httputil"
)

// AddMetricsHandle adds a prometheus-format Handle at '/metrics' to the provided router.
func AddMetricsHandle(r chi.Router) {
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
}

// NewRouter returns the router serving '/metrics' and '/health'.
func NewRouter(log logrus.FieldLogger) chi.Router {
	inFlight := newInFlightCounter()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httputil.NewLogMiddleware(log))
	r.Use(inFlight.Handle)

	AddMetricsHandle(r)
	r.Get("/health", httputil.MakeHealthHandler(log, time.Now()))
	return r
}

// ServeHTTPMetrics serves the metrics router on addr in the background.
// Nothing is served if addr is empty. A bind failure is fatal.
func ServeHTTPMetrics(log logrus.FieldLogger, addr string) {
	if addr == "" {
		return
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).WithField("addr", addr).Fatal("Failed to serve metrics.")
	}

	srv := &http.Server{
		Handler:           NewRouter(log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.WithField("addr", lis.Addr()).Info("Serving metrics...")
	go func() {
		if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server stopped.")
		}
	}()
}

// inFlightCounter tracks the number of requests being served.
type inFlightCounter struct {
	reqs int64
}

func newInFlightCounter() *inFlightCounter {
	c := &inFlightCounter{}
	metrics.GetOrCreateGauge("metrics_request_ongoing_count", func() float64 {
		return float64(atomic.LoadInt64(&c.reqs))
	})
	return c
}

func (c *inFlightCounter) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&c.reqs, 1)
		defer atomic.AddInt64(&c.reqs, -1)

		next.ServeHTTP(w, r)
	})
}
