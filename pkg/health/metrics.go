// Package health exposes the Prometheus metrics endpoint and the metric
// hooks the evaluator reports into.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threadlane/delegator/pkg/logger"
)

// MetricsServer provides the HTTP metrics endpoint for Prometheus and
// implements the evaluator's Observer hooks.
type MetricsServer struct {
	server       *http.Server
	log          logger.Logger
	port         string
	upGauge      prometheus.Gauge
	buildInfo    *prometheus.GaugeVec
	stepsTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// MetricsConfig holds configuration for metrics registration.
type MetricsConfig struct {
	Component string
	Version   string
	Commit    string
}

// NewMetricsServer creates a new metrics server. Each server uses its own
// Prometheus registry to avoid conflicts.
func NewMetricsServer(log logger.Logger, port string, cfg MetricsConfig) *MetricsServer {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "delegator_build_info",
			Help: "Build information for the delegator",
		},
		[]string{"component", "version", "commit"},
	)

	upGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "delegator_up",
			Help: "Whether the delegator is up and running",
			ConstLabels: prometheus.Labels{
				"component": cfg.Component,
				"version":   cfg.Version,
			},
		},
	)

	stepsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegator_steps_total",
			Help: "Cryptogram steps processed, by backend service and method",
		},
		[]string{"service", "method"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegator_evaluation_errors_total",
			Help: "Failed evaluations, by wire error kind",
		},
		[]string{"kind"},
	)

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegator_cache_lookups_total",
			Help: "Memoization cache lookups, by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(buildInfo)
	registry.MustRegister(upGauge)
	registry.MustRegister(stepsTotal)
	registry.MustRegister(errorsTotal)
	registry.MustRegister(cacheLookups)

	// build_info is an info metric, always 1
	buildInfo.WithLabelValues(cfg.Component, cfg.Version, cfg.Commit).Set(1)
	upGauge.Set(1)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		log:          log,
		port:         port,
		upGauge:      upGauge,
		buildInfo:    buildInfo,
		stepsTotal:   stepsTotal,
		errorsTotal:  errorsTotal,
		cacheLookups: cacheLookups,
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start starts the metrics server in a goroutine.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.log.Infof(ctx, "Starting metrics server on port %s", s.port)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCtx := logger.WithError(ctx, err)
			s.log.Errorf(errCtx, "Metrics server error")
		}
	}()

	return nil
}

// OnStep implements the evaluator Observer. Inert steps count under empty
// service and method labels.
func (s *MetricsServer) OnStep(_ int, service, method string) {
	s.stepsTotal.WithLabelValues(service, method).Inc()
}

// OnCacheLookup implements the evaluator Observer.
func (s *MetricsServer) OnCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	s.cacheLookups.WithLabelValues(result).Inc()
}

// OnError implements the evaluator Observer.
func (s *MetricsServer) OnError(kind string) {
	s.errorsTotal.WithLabelValues(kind).Inc()
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "Shutting down metrics server...")
	// up drops to 0 during shutdown
	s.upGauge.Set(0)
	return s.server.Shutdown(ctx)
}
