package neighbor_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/latticefield/lattice"
	"github.com/sarchlab/latticefield/neighbor"
)

func TestNeighbor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Neighbor Suite")
}

var _ = Describe("KernelCache", func() {
	It("matches the exact kernel closely across [0, R_c]", func() {
		rc := 3.5
		kc := neighbor.NewKernelCache(rc)
		for r := 0.0; r < rc; r += 0.137 {
			exact := neighbor.Kernel(r, rc)
			got := kc.Lookup(r)
			Expect(got).To(BeNumerically("~", exact, 1e-3))
		}
	})

	It("returns zero beyond R_c", func() {
		kc := neighbor.NewKernelCache(2.0)
		Expect(kc.Lookup(2.5)).To(Equal(0.0))
	})

	It("returns zero for non-positive R_c", func() {
		kc := neighbor.NewKernelCache(0)
		Expect(kc.Lookup(0.5)).To(Equal(0.0))
	})
})

var _ = Describe("Cache", func() {
	It("is exact: matches brute-force (i,j) pairs with d<=R_c, i!=j", func() {
		g := lattice.New(8, 8, 1, 2)
		rc := 2.0
		kc := neighbor.NewKernelCache(rc)
		c := neighbor.NewCache(g, rc)
		Expect(c.Build(kc).Ok()).To(BeTrue())
		Expect(c.IsBuilt()).To(BeTrue())

		wantPairs := 0
		for i := 0; i < g.Size(); i++ {
			ix, iy, _ := g.Coords(i)
			for j := 0; j < g.Size(); j++ {
				if i == j {
					continue
				}
				jx, jy, _ := g.Coords(j)
				d := g.WrappedEuclideanDistance(ix, iy, 0, jx, jy, 0)
				if d <= rc {
					wantPairs++
				}
			}

			list := c.Neighbors(i)
			seen := map[int]bool{}
			for _, e := range list {
				Expect(e.J).ToNot(Equal(i))
				Expect(seen[e.J]).To(BeFalse(), "duplicate neighbor")
				seen[e.J] = true
				jx, jy, _ := g.Coords(e.J)
				d := g.WrappedEuclideanDistance(ix, iy, 0, jx, jy, 0)
				Expect(e.D).To(BeNumerically("~", d, 1e-9))
				Expect(e.D).To(BeNumerically("<=", rc))
			}
		}

		Expect(c.PairCount()).To(Equal(wantPairs))
	})

	It("produces no neighbors when R_c <= 0", func() {
		g := lattice.New(16, 1, 1, 1)
		c := neighbor.NewCache(g, 0)
		kc := neighbor.NewKernelCache(0)
		Expect(c.Build(kc).Ok()).To(BeTrue())
		for i := 0; i < g.Size(); i++ {
			Expect(c.Neighbors(i)).To(BeEmpty())
		}
	})

	It("produces no neighbors for a single-site lattice", func() {
		g := lattice.New(1, 1, 1, 1)
		c := neighbor.NewCache(g, 5.0)
		kc := neighbor.NewKernelCache(5.0)
		Expect(c.Build(kc).Ok()).To(BeTrue())
		Expect(c.Neighbors(0)).To(BeEmpty())
	})

	It("becomes stale after Invalidate until rebuilt", func() {
		g := lattice.New(4, 1, 1, 1)
		c := neighbor.NewCache(g, 1.5)
		kc := neighbor.NewKernelCache(1.5)
		Expect(c.Build(kc).Ok()).To(BeTrue())
		c.Invalidate()
		Expect(c.IsBuilt()).To(BeFalse())
	})

	It("excludes sites at R_c plus epsilon and includes sites at exactly R_c", func() {
		g := lattice.New(10, 1, 1, 1)
		rc := 3.0
		kc := neighbor.NewKernelCache(rc)
		c := neighbor.NewCache(g, rc)
		Expect(c.Build(kc).Ok()).To(BeTrue())

		list := c.Neighbors(5)
		found3 := false
		for _, e := range list {
			Expect(e.D).To(BeNumerically("<=", rc+1e-9))
			if math.Abs(e.D-3.0) < 1e-9 {
				found3 = true
			}
		}
		Expect(found3).To(BeTrue())
	})
})
