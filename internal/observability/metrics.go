package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage labels used on the evaluation duration histogram.
const (
	StagePasses       = "passes"
	StageFeasibility  = "feasibility"
	StageInterference = "interference"
	StageOpportunity  = "opportunity"
	StageTotal        = "total"
)

// EngineCollector bundles Prometheus metrics for the analysis engines and
// provides the /metrics handler the CLI exposes. A nil collector is safe to
// call; every recording method no-ops.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	Evaluations    *prometheus.CounterVec
	StageDurations *prometheus.HistogramVec

	PassesDetected    prometheus.Counter
	SatellitesSkipped prometheus.Counter

	CacheHits    prometheus.Gauge
	CacheMisses  prometheus.Gauge
	CacheEntries prometheus.Gauge
}

// NewEngineCollector registers the engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registration tolerates collectors that already exist, so repeated
// construction against one registry reuses them.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteeval_evaluations_total",
		Help: "Total number of site evaluations, labeled by outcome.",
	}, []string{"outcome"})
	evaluations, err := registerCounterVec(reg, evaluations, "siteeval_evaluations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "siteeval_stage_duration_seconds",
		Help:    "Evaluation stage latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"stage"})
	durations, err = registerHistogramVec(reg, durations, "siteeval_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	passes, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siteeval_passes_detected_total",
		Help: "Total satellite passes detected across all evaluations.",
	}), "siteeval_passes_detected_total")
	if err != nil {
		return nil, err
	}
	skipped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siteeval_satellites_skipped_total",
		Help: "Total satellites skipped for unresolvable orbital elements.",
	}), "siteeval_satellites_skipped_total")
	if err != nil {
		return nil, err
	}

	cacheHits, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "siteeval_result_cache_hits",
		Help: "Cumulative result-cache hits.",
	}), "siteeval_result_cache_hits")
	if err != nil {
		return nil, err
	}
	cacheMisses, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "siteeval_result_cache_misses",
		Help: "Cumulative result-cache misses.",
	}), "siteeval_result_cache_misses")
	if err != nil {
		return nil, err
	}
	cacheEntries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "siteeval_result_cache_entries",
		Help: "Current number of live result-cache entries.",
	}), "siteeval_result_cache_entries")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:          gatherer,
		Evaluations:       evaluations,
		StageDurations:    durations,
		PassesDetected:    passes,
		SatellitesSkipped: skipped,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		CacheEntries:      cacheEntries,
	}, nil
}

// RecordEvaluation counts one finished evaluation and its total latency.
func (c *EngineCollector) RecordEvaluation(err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.Evaluations != nil {
		c.Evaluations.WithLabelValues(outcome).Inc()
	}
	c.ObserveStage(StageTotal, elapsed)
}

// ObserveStage records the latency of one evaluation stage.
func (c *EngineCollector) ObserveStage(stage string, elapsed time.Duration) {
	if c == nil || c.StageDurations == nil {
		return
	}
	c.StageDurations.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// AddPasses counts detected passes.
func (c *EngineCollector) AddPasses(n int) {
	if c == nil || c.PassesDetected == nil || n <= 0 {
		return
	}
	c.PassesDetected.Add(float64(n))
}

// IncSkipped counts one skipped satellite.
func (c *EngineCollector) IncSkipped() {
	if c == nil || c.SatellitesSkipped == nil {
		return
	}
	c.SatellitesSkipped.Inc()
}

// SetCacheStats mirrors the result-cache counters into gauges.
func (c *EngineCollector) SetCacheStats(hits, misses int64, entries int) {
	if c == nil {
		return
	}
	if c.CacheHits != nil {
		c.CacheHits.Set(float64(hits))
	}
	if c.CacheMisses != nil {
		c.CacheMisses.Set(float64(misses))
	}
	if c.CacheEntries != nil {
		c.CacheEntries.Set(float64(entries))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
