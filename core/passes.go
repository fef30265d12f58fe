package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/groundstation-analyzer/internal/logging"
	"github.com/signalsfoundry/groundstation-analyzer/model"
	"github.com/signalsfoundry/groundstation-analyzer/timegrid"
)

// ErrNoSatellites is returned when a pass calculation is requested with an
// empty satellite list. Individual bad satellites never trigger it: one bad
// entry must not abort the batch, so those are logged and skipped.
var ErrNoSatellites = errors.New("no satellites provided")

// minPassDuration is the floor below which a detected contact is treated as
// horizon noise and discarded.
const minPassDuration = time.Minute

// PassCalculatorOption configures a PassCalculator.
type PassCalculatorOption func(*PassCalculator)

// WithPassLogger routes skip warnings to the given logger.
func WithPassLogger(log logging.Logger) PassCalculatorOption {
	return func(c *PassCalculator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSampleStep overrides the sampling cadence. Non-positive values keep
// the default 1-minute grid.
func WithSampleStep(step time.Duration) PassCalculatorOption {
	return func(c *PassCalculator) {
		if step > 0 {
			c.step = step
		}
	}
}

// WithWorkers bounds the per-satellite scan concurrency.
func WithWorkers(n int) PassCalculatorOption {
	return func(c *PassCalculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithSkipHandler registers a callback invoked once per skipped satellite,
// after the warning is logged. Used by callers that surface skip lists or
// count them in metrics.
func WithSkipHandler(fn func(ref model.SatelliteRef, err error)) PassCalculatorOption {
	return func(c *PassCalculator) {
		c.onSkip = fn
	}
}

// PassCalculator scans observation windows for satellite visibility passes.
// The calculator itself holds only configuration; every call is a pure
// function of its arguments.
type PassCalculator struct {
	propagator OrbitalPropagator
	log        logging.Logger
	step       time.Duration
	workers    int
	onSkip     func(ref model.SatelliteRef, err error)
}

// NewPassCalculator builds a calculator around the given propagator. The
// propagator must be non-nil.
func NewPassCalculator(propagator OrbitalPropagator, opts ...PassCalculatorOption) *PassCalculator {
	c := &PassCalculator{
		propagator: propagator,
		log:        logging.Noop(),
		step:       timegrid.DefaultStep,
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculatePasses samples every satellite over [start, end] at the
// calculator's cadence and returns all detected passes, merged and sorted by
// start time (satellite ID breaks ties, keeping output deterministic).
// Inverted bounds are swapped. Satellites with unresolvable elements are
// skipped with a warning.
func (c *PassCalculator) CalculatePasses(ctx context.Context, loc model.GroundLocation, sats []model.SatelliteRef, start, end time.Time) ([]model.SatellitePass, error) {
	if len(sats) == 0 {
		return nil, ErrNoSatellites
	}
	window := timegrid.NewWindow(start, end)

	// Per-satellite scans are independent; fan out on a bounded pool and
	// merge afterwards.
	results := make([][]model.SatellitePass, len(sats))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	for i, ref := range sats {
		wg.Add(1)
		go func(i int, ref model.SatelliteRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			results[i] = c.scanSatellite(ctx, loc, ref, window)
		}(i, ref)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var passes []model.SatellitePass
	for _, r := range results {
		passes = append(passes, r...)
	}
	sort.Slice(passes, func(i, j int) bool {
		if passes[i].StartTime.Equal(passes[j].StartTime) {
			return passes[i].SatelliteID < passes[j].SatelliteID
		}
		return passes[i].StartTime.Before(passes[j].StartTime)
	})
	return passes, nil
}

// passBuilder accumulates one in-progress pass during a scan.
type passBuilder struct {
	start   time.Time
	startAz float64
	endAz   float64
	peakEl  float64
	peakAt  time.Time
}

func (c *PassCalculator) scanSatellite(ctx context.Context, loc model.GroundLocation, ref model.SatelliteRef, w timegrid.Window) []model.SatellitePass {
	state, err := c.propagator.Resolve(ref)
	if err != nil {
		c.skip(ctx, ref, err)
		return nil
	}

	minEl := loc.MinElevationOrDefault()

	var (
		passes  []model.SatellitePass
		cur     *passBuilder
		samples int
		failed  int
	)

	for t := w.Start; !t.After(w.End); t = t.Add(c.step) {
		if ctx.Err() != nil {
			return passes
		}

		la, err := state.LookAngles(loc, t)
		samples++
		if err != nil {
			// A failed sample cannot witness visibility; terminate any open
			// pass here and move on.
			failed++
			if cur != nil {
				passes = c.closePass(passes, ref, cur, t)
				cur = nil
			}
			continue
		}

		visible := la.ElevationDeg >= minEl
		switch {
		case visible && cur == nil:
			cur = &passBuilder{
				start:   t,
				startAz: la.AzimuthDeg,
				endAz:   la.AzimuthDeg,
				peakEl:  la.ElevationDeg,
				peakAt:  t,
			}
		case visible:
			if la.ElevationDeg > cur.peakEl {
				cur.peakEl = la.ElevationDeg
				cur.peakAt = t
			}
			cur.endAz = la.AzimuthDeg
		case cur != nil:
			passes = c.closePass(passes, ref, cur, t)
			cur = nil
		}
	}

	// A pass still open at the window edge closes there.
	if cur != nil {
		passes = c.closePass(passes, ref, cur, w.End)
	}

	if failed > 0 && failed == samples {
		c.skip(ctx, ref, fmt.Errorf("%w: no usable samples in window", ErrUnresolvedElements))
	} else if failed > 0 {
		c.log.Debug(ctx, "satellite had failed samples",
			logging.String("satellite_id", ref.ID),
			logging.Int("failed", failed),
			logging.Int("samples", samples),
		)
	}

	return passes
}

// closePass finalizes a pass ending at end, discarding sub-minute grazes.
func (c *PassCalculator) closePass(passes []model.SatellitePass, ref model.SatelliteRef, b *passBuilder, end time.Time) []model.SatellitePass {
	if end.Sub(b.start) < minPassDuration {
		return passes
	}
	return append(passes, model.SatellitePass{
		SatelliteID:      ref.ID,
		SatelliteName:    ref.Name,
		Constellation:    ref.Constellation,
		StartTime:        b.start,
		EndTime:          end,
		DurationMinutes:  end.Sub(b.start).Minutes(),
		PeakElevationDeg: b.peakEl,
		PeakTime:         b.peakAt,
		StartAzimuthDeg:  b.startAz,
		EndAzimuthDeg:    b.endAz,
	})
}

func (c *PassCalculator) skip(ctx context.Context, ref model.SatelliteRef, err error) {
	c.log.Warn(ctx, "skipping satellite",
		logging.String("satellite_id", ref.ID),
		logging.String("satellite_name", ref.Name),
		logging.String("error", err.Error()),
	)
	if c.onSkip != nil {
		c.onSkip(ref, err)
	}
}
