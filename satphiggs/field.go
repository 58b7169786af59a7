package satphiggs

import (
	"math"
	"sync"

	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/status"
)

// parallelFor runs fn(i) for every i in [0,n), splitting the range across
// workers goroutines when workers > 1 and running sequentially otherwise.
// See igsoa.parallelFor for the accompanying bit-reproducibility note.
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

// Config holds the uniform physical parameters of a SATP+Higgs field.
type Config struct {
	Dx    float64
	DT    float64
	C     float64
	GammaPhi float64
	GammaH   float64
	Lambda   float64
	Mu2      float64
	LambdaH  float64
}

// HVev derives the Higgs vacuum expectation value from Mu2 and LambdaH:
// h_vev = sqrt(-mu^2 / (2*lambda_h)) for the standard Mexican-hat potential
// used here (mu^2 < 0 in the symmetry-broken phase).
func (c Config) HVev() float64 {
	if c.LambdaH <= 0 {
		return 0
	}
	v2 := -c.Mu2 / (2 * c.LambdaH)
	if v2 <= 0 {
		return 0
	}
	return math.Sqrt(v2)
}

// MaxStableDT returns 0.95*dx/(c*sqrt(d)), the CFL-derived stability bound
// engines check eagerly at construction rather than on the first step.
func MaxStableDT(c, dx float64, dim int) float64 {
	if c <= 0 {
		return math.Inf(1)
	}
	return 0.95 * dx / (c * math.Sqrt(float64(dim)))
}

// Source evaluates the external drive S(t, x, i) added to the phi
// acceleration. If unset, S=0 everywhere.
type Source interface {
	S(t float64, x, y, z int, i int) float64
}

// Field owns the per-site SATP+Higgs storage for one engine instance.
type Field struct {
	Grid lattice.Grid
	Dim  int
	Nodes []Node
	Cfg  Config
}

// New allocates a field set to the physics vacuum: phi=phidot=hdot=0,
// h=h_vev.
func New(grid lattice.Grid, cfg Config) *Field {
	f := &Field{Grid: grid, Dim: grid.Dim, Nodes: make([]Node, grid.Size()), Cfg: cfg}
	f.ResetToVacuum()
	return f
}

// ResetToVacuum sets every site to phi=phidot=hdot=0, h=h_vev.
func (f *Field) ResetToVacuum() {
	vev := f.Cfg.HVev()
	for i := range f.Nodes {
		f.Nodes[i] = Node{Phi: 0, PhiDot: 0, H: vev, HDot: 0}
	}
}

// ValidateDT checks dt against the CFL bound eagerly, replacing the legacy
// on-demand check that deferred the failure to the first unstable step.
func (f *Field) ValidateDT() status.Status {
	maxDT := MaxStableDT(f.Cfg.C, f.Cfg.Dx, f.Dim)
	if f.Cfg.DT <= 0 || f.Cfg.DT > maxDT {
		return status.New(status.InvalidDT,
			"dt=%g exceeds CFL bound %g (c=%g, dx=%g, dim=%d)",
			f.Cfg.DT, maxDT, f.Cfg.C, f.Cfg.Dx, f.Dim)
	}
	return status.OKStatus
}

// laplacian computes the standard second-order stencil: 3-point (1D),
// 5-point (2D, axis sum), 7-point (3D, axis sum), using periodic wrapping
// and values picked from the get func (phi or h).
func (f *Field) laplacian(i int, get func(int) float64) float64 {
	dx2 := f.Cfg.Dx * f.Cfg.Dx
	center := get(i)
	var sum float64
	for axis := 0; axis < f.Dim; axis++ {
		plus := f.Grid.NeighborOffset(i, axis, 1)
		minus := f.Grid.NeighborOffset(i, axis, -1)
		sum += get(plus) + get(minus) - 2*center
	}
	return sum / dx2
}

func (f *Field) phiAt(i int) float64 { return f.Nodes[i].Phi }
func (f *Field) hAt(i int) float64   { return f.Nodes[i].H }

// accelerations computes a_phi, a_h for every site at the given time and
// source:
//
//	phi'' = c^2 lap(phi) - gamma_phi phidot - 2 lambda phi h^2 + S(t,x)
//	h''   = c^2 lap(h)   - gamma_h   hdot   - 2 mu^2 h - 4 lambda_h h^3 - 2 lambda phi^2 h
func (f *Field) accelerations(t float64, src Source, workers int) (aPhi, aH []float64) {
	n := f.Grid.Size()
	aPhi = make([]float64, n)
	aH = make([]float64, n)
	c2 := f.Cfg.C * f.Cfg.C
	parallelFor(n, workers, func(i int) {
		node := f.Nodes[i]
		s := 0.0
		if src != nil {
			x, y, z := f.Grid.Coords(i)
			s = src.S(t, x, y, z, i)
		}
		aPhi[i] = c2*f.laplacian(i, f.phiAt) - f.Cfg.GammaPhi*node.PhiDot - 2*f.Cfg.Lambda*node.Phi*node.H*node.H + s
		aH[i] = c2*f.laplacian(i, f.hAt) - f.Cfg.GammaH*node.HDot - 2*f.Cfg.Mu2*node.H - 4*f.Cfg.LambdaH*node.H*node.H*node.H - 2*f.Cfg.Lambda*node.Phi*node.Phi*node.H
	})
	return aPhi, aH
}

// Step advances the field by one Velocity-Verlet step of size dt at time t.
// Equivalent to StepWorkers(t, src, 1).
func (f *Field) Step(t float64, src Source) status.Status {
	return f.StepWorkers(t, src, 1)
}

// StepWorkers advances the field exactly as Step does, splitting each
// independent per-site pass across workers goroutines when workers > 1.
func (f *Field) StepWorkers(t float64, src Source, workers int) status.Status {
	dt := f.Cfg.DT
	n := f.Grid.Size()

	a0Phi, a0H := f.accelerations(t, src, workers)

	parallelFor(n, workers, func(i int) {
		node := &f.Nodes[i]
		node.Phi += node.PhiDot*dt + 0.5*a0Phi[i]*dt*dt
		node.H += node.HDot*dt + 0.5*a0H[i]*dt*dt
	})

	parallelFor(n, workers, func(i int) {
		node := &f.Nodes[i]
		node.PhiDot += 0.5 * a0Phi[i] * dt
		node.HDot += 0.5 * a0H[i] * dt
	})

	a1Phi, a1H := f.accelerations(t+dt, src, workers)

	parallelFor(n, workers, func(i int) {
		node := &f.Nodes[i]
		node.PhiDot += 0.5 * a1Phi[i] * dt
		node.HDot += 0.5 * a1H[i] * dt
	})

	unstable := -1
	var mu sync.Mutex
	parallelFor(n, workers, func(i int) {
		node := f.Nodes[i]
		if math.IsNaN(node.Phi) || math.IsInf(node.Phi, 0) ||
			math.IsNaN(node.H) || math.IsInf(node.H, 0) {
			mu.Lock()
			if unstable == -1 || i < unstable {
				unstable = i
			}
			mu.Unlock()
		}
	})
	if unstable != -1 {
		return status.New(status.NumericalInstability,
			"NaN/Inf detected at site %d after Velocity-Verlet step", unstable)
	}

	return status.OKStatus
}
