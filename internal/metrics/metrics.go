// Package metrics exposes prometheus counters and histograms for the
// analysis run, following the same CounterVec/HistogramVec +
// prometheus.MustRegister(init) convention as the teacher's gRPC
// middleware, generalised from per-RPC labels to per-run/per-level labels.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dnsriskscan_records_processed_total", Help: "Total records classified"},
		[]string{"level"},
	)
	RowsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dnsriskscan_rows_rejected_total", Help: "Total CSV rows rejected during ingest"},
		[]string{"reason"},
	)
	ChunkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "dnsriskscan_chunk_duration_seconds", Help: "Time to classify one chunk", Buckets: prometheus.DefBuckets},
		[]string{"mode"},
	)
	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "dnsriskscan_run_duration_seconds", Help: "Total wall-clock time of an analysis run", Buckets: prometheus.DefBuckets},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(RecordsProcessed, RowsRejected, ChunkDuration, RunDuration)
}

// ObserveChunk records how long it took to classify one chunk in the given
// execution mode ("in-process" or "worker-pool").
func ObserveChunk(mode string, d time.Duration) {
	ChunkDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveRun records the total duration of a completed run, labelled by its
// terminal pipeline.State string.
func ObserveRun(state string, d time.Duration) {
	RunDuration.WithLabelValues(state).Observe(d.Seconds())
}

// Server serves /metrics on addr until Close is called or the context
// passed to Listen is cancelled, mirroring the teacher's pattern of a small
// standalone HTTP listener alongside the main workload.
type Server struct {
	httpServer *http.Server
	addr       string
}

// Addr returns the actual listen address, including the resolved port when
// addr was given as "host:0".
func (s *Server) Addr() string { return s.addr }

// Listen starts a /metrics HTTP server on addr in the background. A caller
// should defer Close() (or cancel the context passed here) on shutdown.
func Listen(ctx context.Context, addr string) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.Serve(ln)
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return &Server{httpServer: srv, addr: ln.Addr().String()}, nil
}

// Close shuts the metrics server down immediately.
func (s *Server) Close() error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}
