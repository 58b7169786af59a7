package lattice_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/latticefield/lattice"
)

func TestLattice(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lattice Suite")
}

var _ = Describe("Grid", func() {
	It("round-trips index and coordinates in 3D", func() {
		g := lattice.New(5, 4, 3, 3)
		for z := 0; z < 3; z++ {
			for y := 0; y < 4; y++ {
				for x := 0; x < 5; x++ {
					i := g.Index(x, y, z)
					gx, gy, gz := g.Coords(i)
					Expect([3]int{gx, gy, gz}).To(Equal([3]int{x, y, z}))
				}
			}
		}
	})

	It("collapses unused axes to size 1", func() {
		g := lattice.New(8, 99, 99, 1)
		Expect(g.NY).To(Equal(1))
		Expect(g.NZ).To(Equal(1))
		Expect(g.Size()).To(Equal(8))
	})

	It("wraps axis distance correctly", func() {
		Expect(lattice.WrappedAxisDistance(0, 9, 10)).To(Equal(1))
		Expect(lattice.WrappedAxisDistance(2, 8, 10)).To(Equal(4))
		Expect(lattice.WrappedAxisDistance(0, 5, 10)).To(Equal(5))
	})

	It("computes periodic neighbor offsets for any signed shift", func() {
		g := lattice.New(4, 4, 1, 2)
		i := g.Index(0, 0, 0)
		west := g.NeighborOffset(i, 0, -1)
		wx, wy, _ := g.Coords(west)
		Expect([2]int{wx, wy}).To(Equal([2]int{3, 0}))

		far := g.NeighborOffset(i, 0, -9)
		fx, _, _ := g.Coords(far)
		Expect(fx).To(Equal(lattice.WrapAxis(-9, 4)))
	})

	It("computes wrapped Euclidean distance on the torus", func() {
		g := lattice.New(10, 10, 1, 2)
		d := g.WrappedEuclideanDistance(0, 0, 0, 9, 0, 0)
		Expect(d).To(BeNumerically("~", 1.0, 1e-9))
	})
})
