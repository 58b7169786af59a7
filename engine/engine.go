// Package engine owns the lifecycle, validated construction, per-instance
// metrics, and step-advancement bookkeeping for both field families. It is
// the layer between the field math in packages igsoa/satphiggs and the
// opaque handle api exposes.
//
// Every engine instance carries its own Metrics value; there is no
// process-wide counter. config.DeviceBuilder's device construction
// reports progress with direct fmt.Println calls scattered through
// createTiles/createSharedMemory - here that same progress narration is
// replaced by a single EventFunc callback supplied at construction, so a
// caller can route it to a logger, drop it, or collect it in tests.
package engine

import (
	"time"

	"github.com/sarchlab/latticefield/diagnostics"
	"github.com/sarchlab/latticefield/igsoa"
	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/neighbor"
	"github.com/sarchlab/latticefield/satphiggs"
	"github.com/sarchlab/latticefield/status"
)

const (
	// Per-axis limits: 4096 for 1D/2D lattices, 512 for 3D (the extra axis
	// multiplies total sites fastest).
	maxAxisSize1D2D = 4096
	maxAxisSize3D   = 512
	maxTotalSites   = 100_000_000
	maxRC           = 1000
	maxDT           = 1
)

// EventKind classifies a structured engine event.
type EventKind int

const (
	EventCacheRebuilt EventKind = iota
	EventStepCompleted
	EventInstabilityDetected
)

// Event is delivered to the caller-supplied EventFunc. Message is a short
// human-readable description; it is never the sole carrier of structured
// data callers need (Metrics/Status cover that).
type Event struct {
	Kind    EventKind
	Message string
}

// EventFunc receives engine lifecycle events. A nil EventFunc is valid and
// discards every event.
type EventFunc func(Event)

// Metrics accumulates per-engine counters, reset only by Reset.
type Metrics struct {
	StepsTaken    uint64
	SimTime       float64
	CacheRebuilds uint64
	LastStepTook  time.Duration
	TotalStepTime time.Duration
}

// NsPerOp, OpsPerSec, and TotalOps report a throughput triple derived from
// the accumulated step timings above. A step with no completed ops
// reports zero for all three rather than dividing by zero.
func (m Metrics) NsPerOp() float64 {
	if m.StepsTaken == 0 {
		return 0
	}
	return float64(m.TotalStepTime) / float64(m.StepsTaken)
}

func (m Metrics) OpsPerSec() float64 {
	ns := m.NsPerOp()
	if ns == 0 {
		return 0
	}
	return 1e9 / ns
}

func (m Metrics) TotalOps() uint64 {
	return m.StepsTaken
}

func validateCommon(nx, ny, nz, dim int) status.Status {
	if dim < 1 || dim > 3 {
		return status.New(status.InvalidDimensions, "dim must be 1, 2, or 3, got %d", dim)
	}
	axes := [3]int{nx, ny, nz}
	limit := maxAxisSize1D2D
	if dim == 3 {
		limit = maxAxisSize3D
	}
	for axis := 0; axis < dim; axis++ {
		n := axes[axis]
		if n <= 0 || n > limit {
			return status.New(status.InvalidLatticeSize,
				"axis %d size must be in (0, %d], got %d", axis, limit, n)
		}
	}
	total := 1
	for axis := 0; axis < dim; axis++ {
		total *= axes[axis]
	}
	if total > maxTotalSites {
		return status.New(status.InvalidLatticeSize,
			"total sites %d exceeds limit %d", total, maxTotalSites)
	}
	return status.OKStatus
}

// IGSOAEngine owns one IGSOA field instance plus its acceleration caches,
// metrics, and event sink.
type IGSOAEngine struct {
	Field    *igsoa.Field
	cache    *neighbor.Cache
	kernel   *neighbor.KernelCache
	metrics  Metrics
	onEvent  EventFunc
	driving  igsoa.DrivingSource
	t        float64
	useCache bool

	// Workers is the data-parallel concurrency knob: 0 or 1 runs each
	// step's per-site passes sequentially; >1 splits them across that
	// many goroutines.
	// Enabling it does not change any single run's result (every pass is
	// per-site independent - see igsoa.parallelFor), but two runs of the
	// same config may take their cache-miss/cache-hit branches in a
	// different order under scheduler jitter, so it is opt-in rather than
	// the default.
	Workers int
}

// NewIGSOAEngine validates cfg against the allowed parameter bounds and
// allocates a zeroed field. onEvent may be nil.
func NewIGSOAEngine(nx, ny, nz, dim int, cfg igsoa.Config, onEvent EventFunc) (*IGSOAEngine, status.Status) {
	if st := validateCommon(nx, ny, nz, dim); !st.Ok() {
		return nil, st
	}
	if !cfg.RCSet {
		return nil, status.New(status.InvalidRC, "R_c must be set explicitly (use WithRC, even to pass 0 for zero coupling)")
	}
	if cfg.RC < 0 || cfg.RC > maxRC {
		return nil, status.New(status.InvalidRC, "R_c must be in [0, %g], got %g", float64(maxRC), cfg.RC)
	}
	if cfg.DT <= 0 || cfg.DT > maxDT {
		return nil, status.New(status.InvalidDT, "dt must be in (0, %g], got %g", float64(maxDT), cfg.DT)
	}
	if cfg.Kappa < 0 {
		return nil, status.New(status.InvalidKappa, "kappa must be >= 0, got %g", cfg.Kappa)
	}
	if cfg.Gamma < 0 {
		return nil, status.New(status.InvalidGamma, "gamma must be >= 0, got %g", cfg.Gamma)
	}

	grid := lattice.New(nx, ny, nz, dim)
	e := &IGSOAEngine{
		Field:   igsoa.New(grid, cfg),
		onEvent: onEvent,
	}
	if cfg.RCSet && cfg.RC > 0 {
		e.kernel = neighbor.NewKernelCache(cfg.RC)
		e.cache = neighbor.NewCache(grid, cfg.RC)
		e.useCache = true
	}
	return e, status.OKStatus
}

// SetDriving installs (or clears, with nil) the per-step driving source.
func (e *IGSOAEngine) SetDriving(src igsoa.DrivingSource) {
	e.driving = src
}

func (e *IGSOAEngine) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

func (e *IGSOAEngine) ensureCache() status.Status {
	if !e.useCache {
		return status.OKStatus
	}
	if e.cache.IsBuilt() {
		return status.OKStatus
	}
	if st := e.cache.Build(e.kernel); !st.Ok() {
		return st
	}
	e.metrics.CacheRebuilds++
	e.emit(Event{Kind: EventCacheRebuilt, Message: "neighbor cache rebuilt"})
	return status.OKStatus
}

// InvalidateCache marks the neighbor cache stale, forcing a rebuild on the
// next Advance. Callers must invoke this after any manual mutation that
// could change which sites are within R_c of one another (it never
// changes on value mutation alone, but is exposed for completeness).
func (e *IGSOAEngine) InvalidateCache() {
	if e.cache != nil {
		e.cache.Invalidate()
	}
}

// Advance steps the engine forward by k explicit-Euler steps, stopping at
// the first NaN/Inf detection.
func (e *IGSOAEngine) Advance(k int) status.Status {
	if st := e.ensureCache(); !st.Ok() {
		return st
	}
	for s := 0; s < k; s++ {
		start := time.Now()
		st := e.Field.StepWorkers(e.t, e.cache, e.kernel, e.driving, e.Workers)
		took := time.Since(start)

		e.metrics.StepsTaken++
		e.metrics.LastStepTook = took
		e.metrics.TotalStepTime += took

		if !st.Ok() {
			e.emit(Event{Kind: EventInstabilityDetected, Message: st.Message})
			return st
		}
		e.t += e.Field.Cfg.DT
		e.metrics.SimTime = e.t
		e.emit(Event{Kind: EventStepCompleted, Message: "step completed"})
	}
	return status.OKStatus
}

// Metrics returns a snapshot of this engine's accumulated counters.
func (e *IGSOAEngine) Metrics() Metrics {
	return e.metrics
}

// Reset zeroes metrics and simulation time, leaving field state untouched.
func (e *IGSOAEngine) Reset() {
	e.metrics = Metrics{}
	e.t = 0
}

// TotalEnergy, EntropyRate, CenterOfMass expose the diagnostics package's
// reductions over this engine's current field state.
func (e *IGSOAEngine) TotalEnergy() float64     { return diagnostics.IGSOATotalEnergy(e.Field) }
func (e *IGSOAEngine) EntropyRate() float64     { return diagnostics.EntropyRate(e.Field) }
func (e *IGSOAEngine) CenterOfMass() [3]float64 { return diagnostics.IGSOACenterOfMass(e.Field) }

// SATPHiggsEngine owns one SATP+Higgs field instance plus its metrics and
// event sink. It has no acceleration cache: the stencil Laplacian it uses
// is already O(N).
type SATPHiggsEngine struct {
	Field   *satphiggs.Field
	metrics Metrics
	onEvent EventFunc
	source  satphiggs.Source
	t       float64

	// Workers is the same concurrency knob as IGSOAEngine.Workers.
	Workers int
}

// NewSATPHiggsEngine validates cfg (including the CFL bound) and allocates
// a field reset to its physics vacuum.
func NewSATPHiggsEngine(nx, ny, nz, dim int, cfg satphiggs.Config, onEvent EventFunc) (*SATPHiggsEngine, status.Status) {
	if st := validateCommon(nx, ny, nz, dim); !st.Ok() {
		return nil, st
	}
	if cfg.GammaPhi < 0 || cfg.GammaH < 0 {
		return nil, status.New(status.InvalidGamma, "damping coefficients must be >= 0")
	}

	grid := lattice.New(nx, ny, nz, dim)
	f := satphiggs.New(grid, cfg)
	if st := f.ValidateDT(); !st.Ok() {
		return nil, st
	}

	return &SATPHiggsEngine{Field: f, onEvent: onEvent}, status.OKStatus
}

// SetSource installs (or clears, with nil) the per-step external drive.
func (e *SATPHiggsEngine) SetSource(src satphiggs.Source) {
	e.source = src
}

func (e *SATPHiggsEngine) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

// Advance steps the engine forward by k Velocity-Verlet steps, stopping at
// the first NaN/Inf detection.
func (e *SATPHiggsEngine) Advance(k int) status.Status {
	for s := 0; s < k; s++ {
		start := time.Now()
		st := e.Field.StepWorkers(e.t, e.source, e.Workers)
		took := time.Since(start)

		e.metrics.StepsTaken++
		e.metrics.LastStepTook = took
		e.metrics.TotalStepTime += took

		if !st.Ok() {
			e.emit(Event{Kind: EventInstabilityDetected, Message: st.Message})
			return st
		}
		e.t += e.Field.Cfg.DT
		e.metrics.SimTime = e.t
		e.emit(Event{Kind: EventStepCompleted, Message: "step completed"})
	}
	return status.OKStatus
}

// Metrics returns a snapshot of this engine's accumulated counters.
func (e *SATPHiggsEngine) Metrics() Metrics {
	return e.metrics
}

// Reset restores the field to its physics vacuum and zeroes metrics.
func (e *SATPHiggsEngine) Reset() {
	e.Field.ResetToVacuum()
	e.metrics = Metrics{}
	e.t = 0
}

// TotalEnergy, RMS, CenterOfMass expose the diagnostics package's
// reductions over this engine's current field state.
func (e *SATPHiggsEngine) TotalEnergy() float64     { return diagnostics.SATPHiggsTotalEnergy(e.Field) }
func (e *SATPHiggsEngine) HRMS() float64            { return diagnostics.HRMS(e.Field) }
func (e *SATPHiggsEngine) CenterOfMass() [3]float64 { return diagnostics.SATPHiggsCenterOfMass(e.Field) }
