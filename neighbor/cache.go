package neighbor

import (
	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/status"
)

// Entry is one non-self, in-range neighbor of a site: {j, w_ij, d_ij}.
type Entry struct {
	J int
	W float64
	D float64
}

// Cache is the precomputed neighbor list for every site, exact for the
// R_c it was built with. Any change to R_c or the lattice dimensions
// invalidates it; a stale cache must be rebuilt before the next use.
type Cache struct {
	grid    lattice.Grid
	rc      float64
	lists   [][]Entry
	isBuilt bool
}

// NewCache constructs an unbuilt cache bound to grid and rc.
func NewCache(grid lattice.Grid, rc float64) *Cache {
	return &Cache{grid: grid, rc: rc}
}

// IsBuilt reports whether Build has run since the last invalidation.
func (c *Cache) IsBuilt() bool {
	return c.isBuilt
}

// RC returns the causal radius this cache is valid for.
func (c *Cache) RC() float64 {
	return c.rc
}

// Invalidate marks the cache stale; the next Neighbors call against it
// must first Build, or the caller must surface CACHE_NOT_BUILT.
func (c *Cache) Invalidate() {
	c.isBuilt = false
	c.lists = nil
}

// Build rebuilds the neighbor cache for the current R_c: clear, insert
// every site into the spatial hash, then for every site query the bucket
// neighborhood, filter by true wrapped Euclidean distance <= R_c, and
// record the kernel weight via kc.
func (c *Cache) Build(kc *KernelCache) status.Status {
	if c.rc <= 0 || c.grid.Size() <= 1 {
		c.lists = make([][]Entry, c.grid.Size())
		c.isBuilt = true
		return status.OKStatus
	}

	hash := NewSpatialHash(c.grid, c.rc)
	if st := hash.Build(); !st.Ok() {
		return status.New(status.SpatialHashFailed, "spatial hash build failed: %s", st.Message)
	}

	n := c.grid.Size()
	c.lists = make([][]Entry, n)
	for i := 0; i < n; i++ {
		x, y, z := c.grid.Coords(i)
		candidates := hash.Query(x, y, z)

		var list []Entry
		seen := make(map[int]bool, len(candidates))
		for _, j := range candidates {
			if j == i || seen[j] {
				continue
			}
			seen[j] = true
			jx, jy, jz := c.grid.Coords(j)
			d := c.grid.WrappedEuclideanDistance(x, y, z, jx, jy, jz)
			if d > c.rc {
				continue
			}
			w := kc.Lookup(d)
			list = append(list, Entry{J: j, W: w, D: d})
		}
		c.lists[i] = list
	}

	c.isBuilt = true
	return status.OKStatus
}

// Neighbors returns the neighbor entries for site i. Callers must check
// IsBuilt first: igsoa.Field.StepWorkers surfaces status.CacheNotBuilt
// rather than consuming a stale or empty list.
func (c *Cache) Neighbors(i int) []Entry {
	return c.lists[i]
}

// PairCount returns the total number of (i,j) entries across the whole
// cache, used by tests verifying the exactness invariant against a
// brute-force neighbor scan.
func (c *Cache) PairCount() int {
	total := 0
	for _, l := range c.lists {
		total += len(l)
	}
	return total
}
