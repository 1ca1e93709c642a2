package config

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for load counters.
const (
	outcomeSuccess         = "success"
	outcomeNotFound        = "not_found"
	outcomeParseError      = "parse_error"
	outcomeValidationError = "validation_error"
	outcomeError           = "error"
)

// Metrics holds Prometheus metrics for configuration operations. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	coreLoads     *prometheus.CounterVec
	pluginLoads   *prometheus.CounterVec
	reloads       *prometheus.CounterVec
	pluginsLoaded prometheus.Gauge
	registry      *prometheus.Registry
}

// NewMetrics creates a new Metrics instance on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "layercfg"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.coreLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "core_loads_total",
			Help:      "Total number of core configuration load attempts",
		},
		[]string{"outcome"},
	)

	m.pluginLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_loads_total",
			Help:      "Total number of plugin configuration load attempts",
		},
		[]string{"outcome"},
	)

	m.reloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Total number of full configuration reloads",
		},
		[]string{"outcome"},
	)

	m.pluginsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plugins_loaded",
			Help:      "Number of plugin configurations currently held",
		},
	)

	m.registry.MustRegister(
		m.coreLoads,
		m.pluginLoads,
		m.reloads,
		m.pluginsLoaded,
	)

	return m
}

// Registry returns the private Prometheus registry holding the metrics,
// for exposition by the host application.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordCoreLoad(err error) {
	if m == nil {
		return
	}
	m.coreLoads.WithLabelValues(outcomeFor(err)).Inc()
}

func (m *Metrics) recordPluginLoad(err error) {
	if m == nil {
		return
	}
	m.pluginLoads.WithLabelValues(outcomeFor(err)).Inc()
}

func (m *Metrics) recordReload(err error) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(outcomeFor(err)).Inc()
}

func (m *Metrics) setPluginsLoaded(n int) {
	if m == nil {
		return
	}
	m.pluginsLoaded.Set(float64(n))
}

// outcomeFor maps an error from the load path onto a bounded outcome
// label value.
func outcomeFor(err error) string {
	if err == nil {
		return outcomeSuccess
	}

	var (
		notFound *NotFoundError
		parse    *ParseError
		verrs    ValidationErrors
	)
	switch {
	case errors.As(err, &notFound):
		return outcomeNotFound
	case errors.As(err, &parse):
		return outcomeParseError
	case errors.As(err, &verrs):
		return outcomeValidationError
	default:
		return outcomeError
	}
}
