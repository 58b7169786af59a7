package igsoa

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/neighbor"
	"github.com/sarchlab/latticefield/status"
)

// parallelFor runs fn(i) for every i in [0,n). workers<=1 runs sequentially
// in index order; workers>1 splits the range across goroutines. Per-site
// iterations here touch only f.Nodes[i], so both modes produce identical
// results - a bit-reproducibility gap only shows up if a caller combines
// this with a non-associative cross-site reduction outside this loop (e.g.
// feeding results into diagnostics while a step is still in flight).
func parallelFor(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// Config holds the uniform parameters a Field is initialized with.
// RCSet records whether the caller explicitly supplied R_c: there is no
// silent default, so a zero-value Config must not be mistaken for
// "R_c = 0 intentionally".
type Config struct {
	RC           float64
	RCSet        bool
	Kappa        float64
	Gamma        float64
	DT           float64
	HBar         float64 // 0 means "unset"; Field.HBar() defaults it to 1
	NormalizePsi bool
}

// DrivingSource supplies an additive signal at every site for one step. It
// is sampled once per step, at the start of the step, identically across
// 1D/2D/3D (both the Phi and Psi terms are always driven, regardless of
// dimension).
type DrivingSource interface {
	Signal(t float64, x, y, z, i int) (real, imag float64)
}

// Field owns the lattice node storage for one IGSOA engine instance. It
// holds no engine-level bookkeeping (time, step counters, metrics) - that
// lives in package engine, so two engines sharing no state never contend
// on a shared counter.
type Field struct {
	Grid  lattice.Grid
	Nodes []Node
	Cfg   Config
}

// New allocates a zero-initialized field of the given shape and uniform
// per-node parameters drawn from cfg.
func New(grid lattice.Grid, cfg Config) *Field {
	f := &Field{Grid: grid, Nodes: make([]Node, grid.Size()), Cfg: cfg}
	for i := range f.Nodes {
		f.Nodes[i].RC = cfg.RC
		f.Nodes[i].Kappa = cfg.Kappa
		f.Nodes[i].Gamma = cfg.Gamma
	}
	return f
}

// HBar returns the configured hbar, defaulting to 1 when unset.
func (f *Field) HBar() float64 {
	if f.Cfg.HBar == 0 {
		return 1
	}
	return f.Cfg.HBar
}

// couplingSum computes C_i = sum_j w_ij * (psi_j - psi_i) for site i, using
// cache when non-nil and built, otherwise brute-force scanning the bounding
// box of side 2*ceil(R_c)+1 around i (clipped on axes shorter than that, so
// no site is visited twice) and filtering to d <= R_c.
func (f *Field) couplingSum(i int, cache *neighbor.Cache, kc *neighbor.KernelCache) complex128 {
	rc := f.Nodes[i].RC
	if rc <= 0 || f.Grid.Size() <= 1 {
		return 0
	}

	if cache != nil && cache.IsBuilt() {
		var sum complex128
		for _, e := range cache.Neighbors(i) {
			sum += complex(e.W, 0) * (f.Nodes[e.J].Psi - f.Nodes[i].Psi)
		}
		return sum
	}

	return f.bruteForceCouplingSum(i, rc, kc)
}

func (f *Field) bruteForceCouplingSum(i int, rc float64, kc *neighbor.KernelCache) complex128 {
	x, y, z := f.Grid.Coords(i)
	radius := int(math.Ceil(rc))
	// Offsets along an axis of n sites stay within [-(n-1)/2, n/2], so no two
	// offsets wrap onto the same coordinate.
	lo := func(n int) int { return -min(radius, (n-1)/2) }
	hi := func(n int) int { return min(radius, n/2) }

	var sum complex128
	zLo, zHi := 0, 0
	if f.Grid.Dim >= 3 {
		zLo, zHi = lo(f.Grid.NZ), hi(f.Grid.NZ)
	}
	yLo, yHi := 0, 0
	if f.Grid.Dim >= 2 {
		yLo, yHi = lo(f.Grid.NY), hi(f.Grid.NY)
	}
	for dz := zLo; dz <= zHi; dz++ {
		for dy := yLo; dy <= yHi; dy++ {
			for dx := lo(f.Grid.NX); dx <= hi(f.Grid.NX); dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				jx := lattice.WrapAxis(x+dx, f.Grid.NX)
				jy := y
				if f.Grid.Dim >= 2 {
					jy = lattice.WrapAxis(y+dy, f.Grid.NY)
				}
				jz := z
				if f.Grid.Dim >= 3 {
					jz = lattice.WrapAxis(z+dz, f.Grid.NZ)
				}
				j := f.Grid.Index(jx, jy, jz)
				d := f.Grid.WrappedEuclideanDistance(x, y, z, jx, jy, jz)
				if d > rc {
					continue
				}
				w := neighbor.Kernel(d, rc)
				if kc != nil {
					w = kc.Lookup(d)
				}
				sum += complex(w, 0) * (f.Nodes[j].Psi - f.Nodes[i].Psi)
			}
		}
	}
	return sum
}

// gradFMagnitude computes |grad F| at site i via central differences on
// every active axis, identically across 1D/2D/3D.
func (f *Field) gradFMagnitude(i int) float64 {
	var sumSq float64
	for axis := 0; axis < f.Grid.Dim; axis++ {
		plus := f.Grid.NeighborOffset(i, axis, 1)
		minus := f.Grid.NeighborOffset(i, axis, -1)
		n := float64(f.Grid.AxisSize(axis))
		if n < 3 {
			// With fewer than 3 sites the central-difference stencil
			// degenerates; treat the gradient along this axis as zero.
			continue
		}
		d := (f.Nodes[plus].F - f.Nodes[minus].F) / 2
		sumSq += d * d
	}
	return math.Sqrt(sumSq)
}

// Step advances the field by one explicit-Euler time step of size dt,
// in fixed order: driving, then Psi update, then Phi update, then derived
// quantities, then gradients, then optional normalization. Equivalent to
// StepWorkers(t, cache, kc, driving, 1).
func (f *Field) Step(t float64, cache *neighbor.Cache, kc *neighbor.KernelCache, driving DrivingSource) status.Status {
	return f.StepWorkers(t, cache, kc, driving, 1)
}

// StepWorkers advances the field exactly as Step does, but splits each
// independent per-site pass across workers goroutines when workers > 1.
// Every pass here only reads/writes its own
// site's Node, so the numeric result is identical regardless of worker
// count; a caller that also reduces across sites mid-step (outside this
// method) is the only place bit-reproducibility could be affected by
// enabling it.
func (f *Field) StepWorkers(t float64, cache *neighbor.Cache, kc *neighbor.KernelCache, driving DrivingSource, workers int) status.Status {
	if cache != nil && !cache.IsBuilt() {
		return status.New(status.CacheNotBuilt, "neighbor cache not built since last invalidation")
	}

	dt := f.Cfg.DT
	hbar := f.HBar()
	n := f.Grid.Size()

	if driving != nil {
		parallelFor(n, workers, func(i int) {
			x, y, z := f.Grid.Coords(i)
			sr, si := driving.Signal(t, x, y, z, i)
			f.Nodes[i].Phi += sr
			f.Nodes[i].Psi += complex(sr, si)
		})
	}

	coupling := make([]complex128, n)
	parallelFor(n, workers, func(i int) {
		coupling[i] = f.couplingSum(i, cache, kc)
	})

	parallelFor(n, workers, func(i int) {
		node := &f.Nodes[i]
		hPsi := -coupling[i] + complex(node.Kappa*node.Phi, 0)*node.Psi + complex(0, node.Gamma)*node.Psi
		node.PsiDot = complex(0, -1/hbar) * hPsi
		node.Psi += node.PsiDot * complex(dt, 0)
	})

	parallelFor(n, workers, func(i int) {
		node := &f.Nodes[i]
		node.PhiDot = -node.Kappa*(node.Phi-real(node.Psi)) - node.Gamma*node.Phi
		node.Phi += node.PhiDot * dt
	})

	unstable := -1
	var mu sync.Mutex
	parallelFor(n, workers, func(i int) {
		node := &f.Nodes[i]
		if cmplx.IsNaN(node.Psi) || cmplx.IsInf(node.Psi) || math.IsNaN(node.Phi) || math.IsInf(node.Phi, 0) {
			mu.Lock()
			if unstable == -1 || i < unstable {
				unstable = i
			}
			mu.Unlock()
		}
	})
	if unstable != -1 {
		return status.New(status.NumericalInstability,
			"NaN/Inf detected at site %d after Psi/Phi update", unstable)
	}

	parallelFor(n, workers, func(i int) {
		f.Nodes[i].RefreshDerived()
	})

	parallelFor(n, workers, func(i int) {
		f.Nodes[i].GradF = f.gradFMagnitude(i)
	})

	if f.Cfg.NormalizePsi {
		parallelFor(n, workers, func(i int) {
			node := &f.Nodes[i]
			mag := cmplx.Abs(node.Psi)
			if mag > 1e-15 {
				node.Psi /= complex(mag, 0)
			}
		})
	}

	return status.OKStatus
}
