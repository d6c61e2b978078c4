// Package metrics holds the prometheus instruments of the server and their HTTP exposition.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "m2ls"

var (
	// filesIndexed counts files processed by workspace jobs.
	// Labels: job (registration, require_config, watch), status (indexed, skipped, failed)
	filesIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workspace",
		Name:      "files_total",
		Help:      "Files processed by workspace indexing",
	}, []string{"job", "status"})

	// jobDuration measures bulk job wall time.
	// Labels: job
	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "workspace",
		Name:      "job_duration_seconds",
		Help:      "Duration of workspace bulk jobs",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"job"})

	// requests counts engine queries.
	// Labels: method (reference, definition, completion), result (hit, miss)
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "requests_total",
		Help:      "Engine queries by outcome",
	}, []string{"method", "result"})

	// requestLatency measures engine query latency.
	// Labels: method
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "request_duration_seconds",
		Help:      "Engine query latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}, []string{"method"})

	// documentEvents counts document sync transitions.
	// Labels: event (open, change, close, unchanged)
	documentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "document_events_total",
		Help:      "Document sync events",
	}, []string{"event"})

	// indexFacts reports the current fact counts.
	// Labels: kind
	indexFacts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "index",
		Name:      "facts",
		Help:      "Facts currently held by the index",
	}, []string{"kind"})
)

// File status labels.
const (
	StatusIndexed = "indexed"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// RecordFile counts one file processed by job.
func RecordFile(job, status string) {
	filesIndexed.WithLabelValues(job, status).Inc()
}

// RecordJob observes the duration of a finished bulk job.
func RecordJob(job string, d time.Duration) {
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// RecordRequest counts one engine query and observes its latency.
func RecordRequest(method string, hit bool, d time.Duration) {
	result := "miss"
	if hit {
		result = "hit"
	}
	requests.WithLabelValues(method, result).Inc()
	requestLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordDocument counts a document sync event.
func RecordDocument(event string) {
	documentEvents.WithLabelValues(event).Inc()
}

// SetFacts reports the number of facts of kind.
func SetFacts(kind string, n int) {
	indexFacts.WithLabelValues(kind).Set(float64(n))
}

// Handler returns the exposition handler of the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
