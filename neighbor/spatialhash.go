package neighbor

import (
	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/status"
)

// bucketKey identifies a cell of side ceil(R_c) in the bucket grid; when an
// axis size is not a multiple of ceil(R_c), the last cell along that axis
// also holds the remainder, so every cell spans at least ceil(R_c) sites.
// Generalized from config.DeviceBuilder.createSharedMemory's
// map[[2]int]int memory-group bucketing into a 3-int key covering
// 1D/2D/3D uniformly (unused axes are always bucket 0). Bucket
// coordinates are themselves periodic, matching the toroidal lattice
// they partition.
type bucketKey [3]int

// SpatialHash is a uniform-bucket grid used only to construct a
// NeighborCache; it is not consulted in the IGSOA hot loop.
type SpatialHash struct {
	grid       lattice.Grid
	cellSize   int
	numBuckets [3]int
	buckets    map[bucketKey][]int
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 1
	}
	n := a / b
	if a%b != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NewSpatialHash builds an empty hash with cell size ceil(rc).
func NewSpatialHash(grid lattice.Grid, rc float64) *SpatialHash {
	cell := int(rc)
	if float64(cell) < rc {
		cell++
	}
	if cell < 1 {
		cell = 1
	}
	h := &SpatialHash{grid: grid, cellSize: cell, buckets: make(map[bucketKey][]int)}
	h.numBuckets = [3]int{
		max(grid.NX/cell, 1),
		max(grid.NY/cell, 1),
		max(grid.NZ/cell, 1),
	}
	return h
}

func (h *SpatialHash) bucketOf(x, y, z int) bucketKey {
	return bucketKey{
		min(x/h.cellSize, h.numBuckets[0]-1),
		min(y/h.cellSize, h.numBuckets[1]-1),
		min(z/h.cellSize, h.numBuckets[2]-1),
	}
}

// Build clears and repopulates the hash by linear-scanning every site.
func (h *SpatialHash) Build() status.Status {
	h.buckets = make(map[bucketKey][]int)
	n := h.grid.Size()
	for i := 0; i < n; i++ {
		x, y, z := h.grid.Coords(i)
		k := h.bucketOf(x, y, z)
		h.buckets[k] = append(h.buckets[k], i)
	}
	return status.OKStatus
}

// Query returns all sites in the (2r+1)^d bucket neighborhood of the site
// at (x,y,z), with bucket coordinates wrapped so the toroidal boundary is
// honored. r is fixed at 1 since every cell spans at least ceil(R_c) sites.
func (h *SpatialHash) Query(x, y, z int) []int {
	const r = 1
	center := h.bucketOf(x, y, z)

	zLo, zHi := 0, 0
	if h.grid.Dim >= 3 {
		zLo, zHi = -r, r
	}
	yLo, yHi := 0, 0
	if h.grid.Dim >= 2 {
		yLo, yHi = -r, r
	}

	var out []int
	for dz := zLo; dz <= zHi; dz++ {
		zb := lattice.WrapAxis(center[2]+dz, h.numBuckets[2])
		for dy := yLo; dy <= yHi; dy++ {
			yb := lattice.WrapAxis(center[1]+dy, h.numBuckets[1])
			for dx := -r; dx <= r; dx++ {
				xb := lattice.WrapAxis(center[0]+dx, h.numBuckets[0])
				k := bucketKey{xb, yb, zb}
				out = append(out, h.buckets[k]...)
			}
		}
	}
	return out
}
