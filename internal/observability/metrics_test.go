package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordEvaluationCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.RecordEvaluation(nil, 10*time.Millisecond)
	collector.RecordEvaluation(nil, 12*time.Millisecond)
	collector.RecordEvaluation(errors.New("boom"), 5*time.Millisecond)

	if got := testutil.ToFloat64(collector.Evaluations.WithLabelValues("ok")); got != 2 {
		t.Fatalf("siteeval_evaluations_total{outcome=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Evaluations.WithLabelValues("error")); got != 1 {
		t.Fatalf("siteeval_evaluations_total{outcome=error} = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "siteeval_stage_duration_seconds", map[string]string{
		"stage": StageTotal,
	}); count != 3 {
		t.Fatalf("total-stage sample_count = %d, want 3", count)
	}
}

func TestObserveStageLabelsSeparately(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveStage(StagePasses, 20*time.Millisecond)
	collector.ObserveStage(StagePasses, 30*time.Millisecond)
	collector.ObserveStage(StageInterference, 1*time.Millisecond)

	if count := histogramSampleCount(t, reg, "siteeval_stage_duration_seconds", map[string]string{
		"stage": StagePasses,
	}); count != 2 {
		t.Fatalf("passes-stage sample_count = %d, want 2", count)
	}
	if count := histogramSampleCount(t, reg, "siteeval_stage_duration_seconds", map[string]string{
		"stage": StageInterference,
	}); count != 1 {
		t.Fatalf("interference-stage sample_count = %d, want 1", count)
	}
	if count := histogramSampleCount(t, reg, "siteeval_stage_duration_seconds", map[string]string{
		"stage": StageOpportunity,
	}); count != 0 {
		t.Fatalf("opportunity-stage sample_count = %d, want 0", count)
	}
}

func TestPassAndSkipCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.AddPasses(3)
	collector.AddPasses(0)
	collector.AddPasses(-2)
	collector.IncSkipped()
	collector.IncSkipped()

	if got := testutil.ToFloat64(collector.PassesDetected); got != 3 {
		t.Fatalf("siteeval_passes_detected_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.SatellitesSkipped); got != 2 {
		t.Fatalf("siteeval_satellites_skipped_total = %v, want 2", got)
	}
}

func TestSetCacheStatsMirrorsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.SetCacheStats(7, 2, 5)

	if got := testutil.ToFloat64(collector.CacheHits); got != 7 {
		t.Fatalf("siteeval_result_cache_hits = %v, want 7", got)
	}
	if got := testutil.ToFloat64(collector.CacheMisses); got != 2 {
		t.Fatalf("siteeval_result_cache_misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.CacheEntries); got != 5 {
		t.Fatalf("siteeval_result_cache_entries = %v, want 5", got)
	}

	// Gauges track the latest snapshot, not a running sum.
	collector.SetCacheStats(8, 2, 4)
	if got := testutil.ToFloat64(collector.CacheEntries); got != 4 {
		t.Fatalf("siteeval_result_cache_entries after update = %v, want 4", got)
	}
}

func TestMetricsHandlerExposesEngineSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.RecordEvaluation(nil, 15*time.Millisecond)
	collector.AddPasses(4)
	collector.IncSkipped()
	collector.SetCacheStats(1, 1, 1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"siteeval_evaluations_total",
		"siteeval_stage_duration_seconds",
		"siteeval_passes_detected_total",
		"siteeval_satellites_skipped_total",
		"siteeval_result_cache_hits",
		"siteeval_result_cache_misses",
		"siteeval_result_cache_entries",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestRepeatedConstructionReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("first NewEngineCollector: %v", err)
	}
	second, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}

	first.AddPasses(1)
	if got := testutil.ToFloat64(second.PassesDetected); got != 1 {
		t.Fatalf("second collector sees %v passes, want the shared counter at 1", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var collector *EngineCollector

	collector.RecordEvaluation(nil, time.Millisecond)
	collector.ObserveStage(StagePasses, time.Millisecond)
	collector.AddPasses(2)
	collector.IncSkipped()
	collector.SetCacheStats(1, 2, 3)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("nil-collector /metrics status = %d, want 200", rr.Code)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
