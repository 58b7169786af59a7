// Package lattice implements the flat row-major d-dimensional toroidal grid
// shared by both field families: index<->coordinate conversion, periodic
// wrapping, and wrapped-distance computation. It generalizes the fixed
// 4-direction 2D mesh of cgra.Side (North/West/South/East over
// Tiles[y][x]) into an axis+signed-shift offset model for 1, 2, or 3 axes.
package lattice

import "math"

// Dims holds the per-axis site counts. Axes beyond the active dimension
// are fixed at 1 so that index/coords arithmetic is uniform across 1D,
// 2D, and 3D lattices.
type Dims struct {
	NX, NY, NZ int
}

// Grid describes the shape and addressing of a toroidal lattice. It holds
// no per-site data; node storage lives in the owning engine.
type Grid struct {
	Dims
	Dim int // active spatial dimension: 1, 2, or 3
}

// New builds a Grid for the given active dimension, defaulting unused axes
// to size 1.
func New(nx, ny, nz, dim int) Grid {
	g := Grid{Dims: Dims{NX: nx, NY: ny, NZ: nz}, Dim: dim}
	if dim < 2 {
		g.NY = 1
	}
	if dim < 3 {
		g.NZ = 1
	}
	return g
}

// Size returns the total number of sites Nx*Ny*Nz.
func (g Grid) Size() int {
	return g.NX * g.NY * g.NZ
}

// Index converts (x,y,z) coordinates to the flat row-major index
// i = (z*Ny + y)*Nx + x. Debug builds should bounds-check; this is a total
// function assuming 0 <= coord < N_axis, skipping the check in release
// builds.
func (g Grid) Index(x, y, z int) int {
	return (z*g.NY+y)*g.NX + x
}

// Coords converts a flat index back to (x,y,z).
func (g Grid) Coords(i int) (x, y, z int) {
	x = i % g.NX
	rest := i / g.NX
	y = rest % g.NY
	z = rest / g.NY
	return x, y, z
}

// WrapAxis returns v mod n in [0,n), correct for any signed v.
func WrapAxis(v, n int) int {
	return ((v % n) + n) % n
}

// NeighborIndex1D returns the periodic neighbor of i along axis with a
// signed shift delta, e.g. NeighborIndex1D(x, Nx, -1) is the west
// neighbor's x-coordinate.
func NeighborIndex1D(i, n, delta int) int {
	return WrapAxis(i+delta, n)
}

// WrappedAxisDistance returns min(|a-b|, n-|a-b|), the shortest distance
// between two coordinates on a ring of size n.
func WrappedAxisDistance(a, b, n int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if n-d < d {
		return n - d
	}
	return d
}

// WrappedEuclideanDistance returns the Euclidean distance between two
// lattice sites on the torus, using WrappedAxisDistance per active axis.
func (g Grid) WrappedEuclideanDistance(ax, ay, az, bx, by, bz int) float64 {
	dx := float64(WrappedAxisDistance(ax, bx, g.NX))
	var dy, dz float64
	if g.Dim >= 2 {
		dy = float64(WrappedAxisDistance(ay, by, g.NY))
	}
	if g.Dim >= 3 {
		dz = float64(WrappedAxisDistance(az, bz, g.NZ))
	}
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// AxisSize returns the site count along the given 0-indexed axis (0=x,
// 1=y, 2=z), clamped to the active dimension.
func (g Grid) AxisSize(axis int) int {
	switch axis {
	case 0:
		return g.NX
	case 1:
		return g.NY
	default:
		return g.NZ
	}
}

// NeighborOffset computes the periodic neighbor index of site i shifted by
// delta along axis (0=x,1=y,2=z), leaving the other coordinates unchanged.
func (g Grid) NeighborOffset(i, axis, delta int) int {
	x, y, z := g.Coords(i)
	switch axis {
	case 0:
		x = WrapAxis(x+delta, g.NX)
	case 1:
		y = WrapAxis(y+delta, g.NY)
	case 2:
		z = WrapAxis(z+delta, g.NZ)
	}
	return g.Index(x, y, z)
}
