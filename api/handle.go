// Package api is the narrow external interface: a set of operations
// addressed by an opaque handle, returning a Status value rather than a
// Go error or panic. It is grounded in api.Driver / driverImpl's split (a
// small interface backed by a builder-constructed implementation holding
// the real simulation state) but addresses instances by an opaque
// github.com/google/uuid handle instead of a Go pointer, since external
// callers of this boundary are assumed to live outside this process's
// type system (CLI tooling, language bindings, and a web server are
// separate projects consuming this package, not part of it).
package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sarchlab/latticefield/engine"
	"github.com/sarchlab/latticefield/igsoa"
	"github.com/sarchlab/latticefield/initprofile"
	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/satphiggs"
	"github.com/sarchlab/latticefield/status"
)

// Kind distinguishes which field family a Handle addresses.
type Kind int

const (
	KindIGSOA Kind = iota
	KindSATPHiggs
)

type handle struct {
	kind  Kind
	igsoa *engine.IGSOAEngine
	satp  *engine.SATPHiggsEngine
}

// registry is the process-wide table of live handles. Every engine still
// carries its own per-instance Metrics (package engine); this map only
// resolves opaque IDs to instances, it is not itself simulation state.
var (
	registryMu sync.RWMutex
	registry   = make(map[uuid.UUID]*handle)
)

func recoverToStatus(st *status.Status) {
	if r := recover(); r != nil {
		*st = status.New(status.Unknown, "recovered from panic: %v", r)
	}
}

func lookup(id uuid.UUID, want Kind) (*handle, status.Status) {
	registryMu.RLock()
	h, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, status.New(status.NullHandle, "no engine with handle %s", id)
	}
	if h.kind != want {
		return nil, status.New(status.InvalidHandle, "handle %s is not a %s engine", id, kindName(want))
	}
	return h, status.OKStatus
}

func kindName(k Kind) string {
	if k == KindIGSOA {
		return "IGSOA"
	}
	return "SATP+Higgs"
}

// CreateIGSOAEngine validates cfg and the requested lattice shape,
// allocates an IGSOAEngine, and registers it under a fresh handle.
func CreateIGSOAEngine(nx, ny, nz, dim int, cfg igsoa.Config) (id uuid.UUID, st status.Status) {
	defer recoverToStatus(&st)

	e, est := engine.NewIGSOAEngine(nx, ny, nz, dim, cfg, nil)
	if !est.Ok() {
		return uuid.Nil, est
	}

	id = uuid.New()
	registryMu.Lock()
	registry[id] = &handle{kind: KindIGSOA, igsoa: e}
	registryMu.Unlock()
	return id, status.OKStatus
}

// CreateSATPHiggsEngine validates cfg (including the CFL bound) and the
// requested lattice shape, allocates a SATPHiggsEngine at its physics
// vacuum, and registers it under a fresh handle.
func CreateSATPHiggsEngine(nx, ny, nz, dim int, cfg satphiggs.Config) (id uuid.UUID, st status.Status) {
	defer recoverToStatus(&st)

	e, est := engine.NewSATPHiggsEngine(nx, ny, nz, dim, cfg, nil)
	if !est.Ok() {
		return uuid.Nil, est
	}

	id = uuid.New()
	registryMu.Lock()
	registry[id] = &handle{kind: KindSATPHiggs, satp: e}
	registryMu.Unlock()
	return id, status.OKStatus
}

// Destroy releases the engine behind id. Destroying an unknown or
// already-destroyed handle returns NullHandle rather than panicking.
func Destroy(id uuid.UUID) (st status.Status) {
	defer recoverToStatus(&st)

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[id]; !ok {
		return status.New(status.NullHandle, "no engine with handle %s", id)
	}
	delete(registry, id)
	return status.OKStatus
}

// Dimensions returns the (nx, ny, nz, dim) shape of the lattice behind id.
func Dimensions(id uuid.UUID) (nx, ny, nz, dim int, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return 0, 0, 0, 0, lst
	}
	g := gridOf(h)
	return g.NX, g.NY, g.NZ, g.Dim, status.OKStatus
}

func lookupEither(id uuid.UUID) (*handle, status.Status) {
	registryMu.RLock()
	h, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, status.New(status.NullHandle, "no engine with handle %s", id)
	}
	return h, status.OKStatus
}

func gridOf(h *handle) lattice.Grid {
	if h.kind == KindIGSOA {
		return h.igsoa.Field.Grid
	}
	return h.satp.Field.Grid
}

// SetDriving installs (or, passed nil, clears) the per-step driving source
// an IGSOA engine samples at the start of every Advance step.
func SetDriving(id uuid.UUID, src igsoa.DrivingSource) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	h.igsoa.SetDriving(src)
	return status.OKStatus
}

// SetSource installs (or, passed nil, clears) the external drive a
// SATP+Higgs engine samples on every Advance step, at the step's start time
// and again at its end time.
func SetSource(id uuid.UUID, src satphiggs.Source) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindSATPHiggs)
	if !lst.Ok() {
		return lst
	}
	h.satp.SetSource(src)
	return status.OKStatus
}

// Advance steps the engine behind id forward by k integrator steps.
func Advance(id uuid.UUID, k int) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return lst
	}
	if h.kind == KindIGSOA {
		return h.igsoa.Advance(k)
	}
	return h.satp.Advance(k)
}

// SetPsi overwrites the psi value at the given flat site index of an
// IGSOA engine.
func SetPsi(id uuid.UUID, index int, re, im float64) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	if index < 0 || index >= len(h.igsoa.Field.Nodes) {
		return status.New(status.OutOfBounds, "index %d out of bounds", index)
	}
	h.igsoa.Field.Nodes[index].Psi = complex(re, im)
	h.igsoa.Field.Nodes[index].RefreshDerived()
	return status.OKStatus
}

// SetPhi overwrites the phi value at the given flat site index of an
// IGSOA engine.
func SetPhi(id uuid.UUID, index int, val float64) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	if index < 0 || index >= len(h.igsoa.Field.Nodes) {
		return status.New(status.OutOfBounds, "index %d out of bounds", index)
	}
	h.igsoa.Field.Nodes[index].Phi = val
	h.igsoa.Field.Nodes[index].RefreshDerived()
	return status.OKStatus
}

// GetPsi returns the psi value at the given flat site index of an IGSOA
// engine.
func GetPsi(id uuid.UUID, index int) (re, im float64, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return 0, 0, lst
	}
	if index < 0 || index >= len(h.igsoa.Field.Nodes) {
		return 0, 0, status.New(status.OutOfBounds, "index %d out of bounds", index)
	}
	psi := h.igsoa.Field.Nodes[index].Psi
	return real(psi), imag(psi), status.OKStatus
}

// GetPhi returns the phi value at the given flat site index, valid for
// either field family (IGSOA's causal field or SATP+Higgs's phi scalar).
func GetPhi(id uuid.UUID, index int) (val float64, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return 0, lst
	}
	if h.kind == KindIGSOA {
		if index < 0 || index >= len(h.igsoa.Field.Nodes) {
			return 0, status.New(status.OutOfBounds, "index %d out of bounds", index)
		}
		return h.igsoa.Field.Nodes[index].Phi, status.OKStatus
	}
	if index < 0 || index >= len(h.satp.Field.Nodes) {
		return 0, status.New(status.OutOfBounds, "index %d out of bounds", index)
	}
	return h.satp.Field.Nodes[index].Phi, status.OKStatus
}

// GetF returns |psi|^2 at the given flat site index of an IGSOA engine.
func GetF(id uuid.UUID, index int) (val float64, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return 0, lst
	}
	if index < 0 || index >= len(h.igsoa.Field.Nodes) {
		return 0, status.New(status.OutOfBounds, "index %d out of bounds", index)
	}
	return h.igsoa.Field.Nodes[index].F, status.OKStatus
}

// State is one site's full exported state, field-family-agnostic; unused
// members of either family are left at zero.
type State struct {
	PsiRe, PsiIm float64
	Phi, H       float64
}

// GetAllStates returns the full per-site state of the engine behind id.
func GetAllStates(id uuid.UUID) (states []State, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return nil, lst
	}
	if h.kind == KindIGSOA {
		states = make([]State, len(h.igsoa.Field.Nodes))
		for i, n := range h.igsoa.Field.Nodes {
			states[i] = State{PsiRe: real(n.Psi), PsiIm: imag(n.Psi), Phi: n.Phi}
		}
		return states, status.OKStatus
	}
	states = make([]State, len(h.satp.Field.Nodes))
	for i, n := range h.satp.Field.Nodes {
		states[i] = State{Phi: n.Phi, H: n.H}
	}
	return states, status.OKStatus
}

// GetMetrics returns a snapshot of the engine's per-instance metrics.
func GetMetrics(id uuid.UUID) (m engine.Metrics, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return engine.Metrics{}, lst
	}
	if h.kind == KindIGSOA {
		return h.igsoa.Metrics(), status.OKStatus
	}
	return h.satp.Metrics(), status.OKStatus
}

// TotalEnergy returns the lattice-wide energy of the engine behind id.
func TotalEnergy(id uuid.UUID) (val float64, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return 0, lst
	}
	if h.kind == KindIGSOA {
		return h.igsoa.TotalEnergy(), status.OKStatus
	}
	return h.satp.TotalEnergy(), status.OKStatus
}

// EntropyRate returns the lattice-wide entropy production rate of an
// IGSOA engine.
func EntropyRate(id uuid.UUID) (val float64, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return 0, lst
	}
	return h.igsoa.EntropyRate(), status.OKStatus
}

// CenterOfMass returns the circular-statistics center of mass of the
// engine behind id.
func CenterOfMass(id uuid.UUID) (com [3]float64, st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookupEither(id)
	if !lst.Ok() {
		return com, lst
	}
	if h.kind == KindIGSOA {
		return h.igsoa.CenterOfMass(), status.OKStatus
	}
	return h.satp.CenterOfMass(), status.OKStatus
}

// InitGaussian applies the Gaussian initializer to an IGSOA engine behind
// id.
func InitGaussian(id uuid.UUID, placement initprofile.Placement, params initprofile.GaussianParams) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	initprofile.Gaussian(h.igsoa.Field, placement, params)
	return status.OKStatus
}

// InitPlaneWave applies the plane-wave initializer to an IGSOA engine
// behind id.
func InitPlaneWave(id uuid.UUID, placement initprofile.Placement, params initprofile.PlaneWaveParams) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	initprofile.PlaneWave(h.igsoa.Field, placement, params)
	return status.OKStatus
}

// InitUniform applies the uniform initializer to an IGSOA engine behind
// id.
func InitUniform(id uuid.UUID, placement initprofile.Placement, params initprofile.UniformParams) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	initprofile.Uniform(h.igsoa.Field, placement, params)
	return status.OKStatus
}

// InitRandom applies the random initializer to an IGSOA engine behind id.
func InitRandom(id uuid.UUID, placement initprofile.Placement, aMax float64, seed uint64) (st status.Status) {
	defer recoverToStatus(&st)

	h, lst := lookup(id, KindIGSOA)
	if !lst.Ok() {
		return lst
	}
	initprofile.Random(h.igsoa.Field, placement, aMax, seed)
	return status.OKStatus
}
