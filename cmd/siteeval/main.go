package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/groundstation-analyzer/core"
	"github.com/signalsfoundry/groundstation-analyzer/internal/logging"
	"github.com/signalsfoundry/groundstation-analyzer/internal/observability"
	"github.com/signalsfoundry/groundstation-analyzer/kb"
	"github.com/signalsfoundry/groundstation-analyzer/model"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.json", "Path to a JSON evaluation scenario")
	startFlag := flag.String("start", "now", "Window start as RFC3339, or \"now\"")
	daysFlag := flag.Int("days", 0, "Window length in days (0 = scenario default, else 1)")
	jsonOut := flag.Bool("json", false, "Emit the full reports as JSON instead of a summary")
	metricsAddr := flag.String("metrics-listen", "", "HTTP address for Prometheus /metrics (empty = disabled)")
	workers := flag.Int("workers", 0, "Concurrent satellite scans (0 = one per CPU)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	tracingShutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), tracingShutdown, log)

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		metricsSrv = serveMetrics(*metricsAddr, collector, log)
	}

	scenario := loadScenario(*scenarioPath)
	start, end := resolveWindow(scenario, *startFlag, *daysFlag)

	evaluator := core.NewSiteEvaluator(
		core.NewSGP4Propagator(),
		kb.DefaultCatalog(),
		core.WithEvaluatorLogger(log),
		core.WithEvaluatorMetrics(collector),
		core.WithEvaluatorWorkers(*workers),
	)

	if !*jsonOut {
		fmt.Printf("Evaluating %d candidate sites against %d satellites, window %s → %s\n",
			len(scenario.Stations), len(scenario.Satellites),
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	reports := make([]model.SiteReport, 0, len(scenario.Stations))
	for _, st := range scenario.Stations {
		report, err := evaluator.EvaluateSite(ctx, core.EvaluationRequest{
			Location:      st.Location,
			Satellites:    scenario.Satellites,
			Start:         start,
			End:           end,
			Link:          scenario.Link,
			Sources:       scenario.Sources,
			CountryCode:   st.CountryCode,
			DesiredLonDeg: scenario.DesiredLonDeg,
			Neighbors:     scenario.Neighbors,
			Cell:          st.Cell,
		})
		if err != nil {
			log.Error(ctx, "site evaluation failed",
				logging.String("site", st.Location.Name),
				logging.String("error", err.Error()),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		reports = append(reports, report)
		if !*jsonOut {
			printSummary(report)
		}
	}

	if *jsonOut {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			log.Error(ctx, "failed to marshal reports", logging.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("Evaluation complete: %d/%d sites reported.\n", len(reports), len(scenario.Stations))
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func loadScenario(path string) *core.Scenario {
	f, err := os.Open(path)
	if err != nil {
		panic(fmt.Errorf("failed to open evaluation scenario %q: %w", path, err))
	}
	defer f.Close()

	scenario, err := core.LoadScenario(f)
	if err != nil {
		panic(fmt.Errorf("failed to load evaluation scenario: %w", err))
	}
	return scenario
}

// resolveWindow layers the flags over the scenario defaults: an explicit
// -start/-days wins, then the scenario window, then now + one day.
func resolveWindow(scenario *core.Scenario, startFlag string, daysFlag int) (time.Time, time.Time) {
	start := time.Now().UTC()
	if !scenario.WindowStart.IsZero() {
		start = scenario.WindowStart
	}
	if startFlag != "" && startFlag != "now" {
		parsed, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			panic(fmt.Errorf("invalid -start %q: %w", startFlag, err))
		}
		start = parsed.UTC()
	}

	days := 1
	if scenario.WindowDays > 0 {
		days = scenario.WindowDays
	}
	if daysFlag > 0 {
		days = daysFlag
	}
	return start, start.Add(time.Duration(days) * 24 * time.Hour)
}

func printSummary(r model.SiteReport) {
	fmt.Printf("\nSite %-24s (%.2f°, %.2f°)  feasibility=%5.1f\n",
		r.Location.Name, r.Location.LatitudeDeg, r.Location.LongitudeDeg, r.Metrics.FeasibilityScore)
	fmt.Printf("↳ passes  %3d total  %4.1f/day  avg=%5.1f min  contact=%4.1f h/d  gap=%4.1f h  capacity=%6.1f Gbps\n",
		len(r.Passes), r.Metrics.PassesPerDay, r.Metrics.AvgPassDurationMin,
		r.Metrics.DailyContactHours, r.Metrics.CoverageGapHours, r.Metrics.CapacityGbps)
	if len(r.SkippedSatellites) > 0 {
		fmt.Printf("↳ skipped %d satellites: %v\n", len(r.SkippedSatellites), r.SkippedSatellites)
	}

	if ia := r.Interference; ia != nil {
		fmt.Printf("↳ rf      C/I=%6.1f dB  C/N=%5.1f dB  SINR=%6.1f dB  impact=%-8s mitigation=%v\n",
			ia.CToIdB, ia.CToNdB, ia.SINRdB, ia.Impact, ia.MitigationRequired)
		if ia.DominantSource != "" {
			fmt.Printf("↳           dominant source %q, capacity loss %.1f%%\n",
				ia.DominantSource, ia.CapacityReductionPct)
		}
	}
	if c := r.Conflict; c != nil {
		fmt.Printf("↳ 5G      band %s %s conflict (%s impact)\n", c.Band, c.ConflictType, c.Impact)
	}
	if asi := r.AdjacentSats; asi != nil && len(asi.Contributions) > 0 {
		fmt.Printf("↳ asi     total=%6.1f dBW  worst %s (%.1f dBW)\n",
			asi.TotalASIdBW, asi.WorstContributor, asi.WorstContributionDBW)
	}
	if op := r.Opportunity; op != nil {
		fmt.Printf("↳ market  score=%5.1f (%s)  confidence=%.0f%%  potential=$%sM  invest=$%sM  ttm=%d mo  roi=%.0f%%\n",
			op.Score, op.Category, op.Confidence,
			op.MarketPotentialM.StringFixed(1), op.InvestmentRequiredM.StringFixed(1),
			op.TimeToMarketMonths, op.ROIPct)
	}

	var recs []string
	if r.Interference != nil {
		recs = r.Interference.Recommendations
	}
	if len(recs) == 0 && r.Opportunity != nil {
		recs = r.Opportunity.Recommendations
	}
	for _, rec := range recs {
		fmt.Printf("  - %s\n", rec)
	}
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
