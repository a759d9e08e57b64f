// SPDX-License-Identifier: EPL-2.0

// Package metrics exports render engine counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/audplay/stream"
)

const namespace = "audplay"

// StatsFunc returns a snapshot of the engine counters.
type StatsFunc func() stream.Stats

// Collector reads a fresh Stats snapshot on every scrape.
type Collector struct {
	stats StatsFunc

	callbacks      *prometheus.Desc
	starved        *prometheus.Desc
	tracksStarted  *prometheus.Desc
	tracksFinished *prometheus.Desc
	clears         *prometheus.Desc
	silentSamples  *prometheus.Desc
	faults         *prometheus.Desc
	queueLen       *prometheus.Desc
	idle           *prometheus.Desc
	playing        *prometheus.Desc
}

func NewCollector(stats StatsFunc) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "engine", name), help, nil, nil)
	}

	return &Collector{
		stats:          stats,
		callbacks:      desc("callbacks_total", "Render callbacks served."),
		starved:        desc("starved_callbacks_total", "Callbacks cut short because the current track had no audio buffered."),
		tracksStarted:  desc("tracks_started_total", "Tracks taken from the queue."),
		tracksFinished: desc("tracks_finished_total", "Tracks played to the end."),
		clears:         desc("clears_total", "Current tracks dropped by a clear."),
		silentSamples:  desc("silent_samples_total", "Output samples filled with silence."),
		faults:         desc("faults_total", "Callbacks that panicked and were replaced with silence."),
		queueLen:       desc("queue_length", "Tracks waiting to start."),
		idle:           desc("idle", "1 when no track is current."),
		playing:        desc("playing", "1 while the transport is playing."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.callbacks
	ch <- c.starved
	ch <- c.tracksStarted
	ch <- c.tracksFinished
	ch <- c.clears
	ch <- c.silentSamples
	ch <- c.faults
	ch <- c.queueLen
	ch <- c.idle
	ch <- c.playing
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.callbacks, s.Callbacks)
	counter(c.starved, s.StarvedCallbacks)
	counter(c.tracksStarted, s.TracksStarted)
	counter(c.tracksFinished, s.TracksFinished)
	counter(c.clears, s.Clears)
	counter(c.silentSamples, s.SilentSamples)
	counter(c.faults, s.Faults)
	gauge(c.queueLen, float64(s.QueueLen))
	gauge(c.idle, boolValue(s.Idle))
	gauge(c.playing, boolValue(s.Playing))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NewRegistry returns a registry holding the engine collector and the Go
// runtime collectors.
func NewRegistry(stats StatsFunc) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(stats),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes reg on addr under /metrics until ctx ends.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	return nil
}
