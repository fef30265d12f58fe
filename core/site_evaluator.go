package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/groundstation-analyzer/internal/logging"
	"github.com/signalsfoundry/groundstation-analyzer/internal/observability"
	"github.com/signalsfoundry/groundstation-analyzer/internal/rescache"
	"github.com/signalsfoundry/groundstation-analyzer/kb"
	"github.com/signalsfoundry/groundstation-analyzer/model"
	"github.com/signalsfoundry/groundstation-analyzer/timegrid"
)

// EvaluationRequest carries everything needed to evaluate one candidate
// site. The RF, GEO-neighborhood, and market sections are optional; a nil
// Link, empty Neighbors, or nil Cell skips the corresponding stage.
type EvaluationRequest struct {
	Location   model.GroundLocation
	Satellites []model.SatelliteRef
	Start      time.Time
	End        time.Time

	Link        *model.LinkBudget
	Sources     []model.InterferenceSource
	CountryCode string

	DesiredLonDeg float64
	Neighbors     []model.AdjacentSatellite

	Cell *model.GridCell
}

// EvaluatorOption configures a SiteEvaluator.
type EvaluatorOption func(*SiteEvaluator)

// WithEvaluatorLogger routes evaluation logs to the given logger.
func WithEvaluatorLogger(log logging.Logger) EvaluatorOption {
	return func(e *SiteEvaluator) {
		if log != nil {
			e.log = log
		}
	}
}

// WithEvaluatorMetrics attaches a metrics collector. Nil is allowed; the
// collector's methods no-op on nil receivers.
func WithEvaluatorMetrics(m *observability.EngineCollector) EvaluatorOption {
	return func(e *SiteEvaluator) { e.metrics = m }
}

// WithEvaluatorWorkers bounds the pass-scan concurrency.
func WithEvaluatorWorkers(n int) EvaluatorOption {
	return func(e *SiteEvaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithEvaluatorStep overrides the visibility sampling cadence.
func WithEvaluatorStep(step time.Duration) EvaluatorOption {
	return func(e *SiteEvaluator) {
		if step > 0 {
			e.step = step
		}
	}
}

// WithEvaluatorNoiseTemperature overrides the receive noise temperature used
// by the interference stage.
func WithEvaluatorNoiseTemperature(kelvin float64) EvaluatorOption {
	return func(e *SiteEvaluator) {
		if kelvin > 0 {
			e.noiseTempK = kelvin
		}
	}
}

// WithEvaluatorClock overrides the evaluator's clock, including the one the
// result caches bucket on.
func WithEvaluatorClock(now func() time.Time) EvaluatorOption {
	return func(e *SiteEvaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// SiteEvaluator runs the full site-analysis workflow: pass prediction,
// technical feasibility, RF interference, and commercial opportunity, bundled
// into one SiteReport. Engines stay independent; this type owns only the
// sequencing, caching, logging, tracing, and metrics around them.
type SiteEvaluator struct {
	propagator OrbitalPropagator
	catalog    *kb.Catalog
	log        logging.Logger
	metrics    *observability.EngineCollector
	tracer     trace.Tracer
	workers    int
	step       time.Duration
	noiseTempK float64
	now        func() time.Time

	feasibility  *FeasibilityScorer
	interference *InterferenceCalculator
	opportunity  *OpportunityAnalyzer

	oppCache    *rescache.Cache[model.OpportunityScore]
	assessCache *rescache.Cache[model.InterferenceAssessment]
}

// NewSiteEvaluator builds the workflow around a propagator and catalog. A
// nil catalog falls back to the built-in defaults; the propagator must be
// non-nil.
func NewSiteEvaluator(propagator OrbitalPropagator, catalog *kb.Catalog, opts ...EvaluatorOption) *SiteEvaluator {
	if catalog == nil {
		catalog = kb.DefaultCatalog()
	}
	e := &SiteEvaluator{
		propagator:  propagator,
		catalog:     catalog,
		log:         logging.Noop(),
		tracer:      otel.Tracer("github.com/signalsfoundry/groundstation-analyzer/core"),
		now:         time.Now,
		oppCache:    rescache.New[model.OpportunityScore](0),
		assessCache: rescache.New[model.InterferenceAssessment](0),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.feasibility = NewFeasibilityScorer(catalog)
	e.interference = NewInterferenceCalculator(catalog, WithNoiseTemperature(e.noiseTempK))
	e.opportunity = NewOpportunityAnalyzer(catalog,
		WithOpportunityCache(e.oppCache),
		WithOpportunityClock(e.now),
	)
	return e
}

// EvaluateSite runs every applicable stage for one candidate site and
// returns the bundled report. Only a failed pass calculation aborts the
// evaluation; the scoring stages cannot fail.
func (e *SiteEvaluator) EvaluateSite(ctx context.Context, req EvaluationRequest) (model.SiteReport, error) {
	started := e.now()
	reportID := uuid.NewString()
	log := logging.WithReportLogger(e.log, reportID)

	ctx, span := e.tracer.Start(ctx, "siteeval.EvaluateSite", trace.WithAttributes(
		attribute.String("report_id", reportID),
		attribute.String("site", req.Location.Name),
		attribute.Int("satellites", len(req.Satellites)),
	))
	defer span.End()

	window := timegrid.NewWindow(req.Start, req.End)
	report := model.SiteReport{
		ReportID:    reportID,
		Location:    req.Location,
		WindowStart: window.Start,
		WindowEnd:   window.End,
	}

	log.Info(ctx, "evaluating site",
		logging.String("site", req.Location.Name),
		logging.Int("satellites", len(req.Satellites)),
		logging.String("window_start", window.Start.UTC().Format(time.RFC3339)),
		logging.String("window_end", window.End.UTC().Format(time.RFC3339)),
	)

	// Pass prediction. The calculator is rebuilt per evaluation so the skip
	// handler can collect into report-local state even when evaluations run
	// concurrently.
	var (
		skipMu  sync.Mutex
		skipped []string
	)
	calc := NewPassCalculator(e.propagator,
		WithPassLogger(log),
		WithSampleStep(e.step),
		WithWorkers(e.workers),
		WithSkipHandler(func(ref model.SatelliteRef, err error) {
			skipMu.Lock()
			skipped = append(skipped, ref.ID)
			skipMu.Unlock()
			e.metrics.IncSkipped()
		}),
	)

	stageCtx, stageSpan := e.tracer.Start(ctx, "siteeval.passes")
	stageStart := e.now()
	passes, err := calc.CalculatePasses(stageCtx, req.Location, req.Satellites, window.Start, window.End)
	e.metrics.ObserveStage(observability.StagePasses, e.now().Sub(stageStart))
	stageSpan.End()
	if err != nil {
		span.RecordError(err)
		e.metrics.RecordEvaluation(err, e.now().Sub(started))
		return model.SiteReport{}, fmt.Errorf("calculate passes: %w", err)
	}
	sort.Strings(skipped)
	report.Passes = passes
	report.SkippedSatellites = skipped
	e.metrics.AddPasses(len(passes))

	_, stageSpan = e.tracer.Start(ctx, "siteeval.feasibility")
	stageStart = e.now()
	report.Metrics = e.feasibility.CalculateTechnicalMetrics(req.Location, passes, window.Start, window.End)
	e.metrics.ObserveStage(observability.StageFeasibility, e.now().Sub(stageStart))
	stageSpan.End()

	if req.Link != nil {
		_, stageSpan = e.tracer.Start(ctx, "siteeval.interference")
		stageStart = e.now()
		assessment := e.assessInterference(req)
		report.Interference = &assessment
		report.Conflict = e.interference.Check5GConflict(req.Link.FrequencyMHz, req.CountryCode)
		if len(req.Neighbors) > 0 {
			asi := e.interference.AssessAdjacentSatellites(req.Location.LongitudeDeg, req.DesiredLonDeg, req.Neighbors)
			report.AdjacentSats = &asi
		}
		e.metrics.ObserveStage(observability.StageInterference, e.now().Sub(stageStart))
		stageSpan.End()
	}

	if req.Cell != nil {
		_, stageSpan = e.tracer.Start(ctx, "siteeval.opportunity")
		stageStart = e.now()
		opp := e.opportunity.CalculateOpportunityScore(*req.Cell)
		report.Opportunity = &opp
		e.metrics.ObserveStage(observability.StageOpportunity, e.now().Sub(stageStart))
		stageSpan.End()
	}

	oHits, oMisses, _ := e.oppCache.Stats()
	aHits, aMisses, _ := e.assessCache.Stats()
	e.metrics.SetCacheStats(oHits+aHits, oMisses+aMisses, e.oppCache.Len()+e.assessCache.Len())

	report.GeneratedAt = e.now().UTC()
	elapsed := e.now().Sub(started)
	report.ElapsedMS = elapsed.Milliseconds()

	span.SetAttributes(
		attribute.Int("passes", len(passes)),
		attribute.Float64("feasibility_score", report.Metrics.FeasibilityScore),
	)
	e.metrics.RecordEvaluation(nil, elapsed)
	log.Info(ctx, "site evaluation complete",
		logging.Int("passes", len(passes)),
		logging.Int("skipped", len(skipped)),
		logging.Any("feasibility_score", report.Metrics.FeasibilityScore),
		logging.Any("elapsed_ms", report.ElapsedMS),
	)
	return report, nil
}

// assessInterference memoizes assessments per site within the cache bucket;
// unnamed sites are computed directly since they have no stable key.
func (e *SiteEvaluator) assessInterference(req EvaluationRequest) model.InterferenceAssessment {
	if req.Location.Name == "" {
		return e.interference.PerformComprehensiveAssessment(*req.Link, req.Sources)
	}
	key := timegrid.BucketKey("interference:"+req.Location.Name, e.now(), timegrid.DefaultCacheBucket)
	if hit, ok := e.assessCache.Get(key); ok {
		return hit
	}
	out := e.interference.PerformComprehensiveAssessment(*req.Link, req.Sources)
	e.assessCache.Put(key, out)
	return out
}
