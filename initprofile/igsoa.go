package initprofile

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/sarchlab/latticefield/igsoa"
)

// GaussianParams parametrizes the 1D/2D/3D Gaussian initializer.
type GaussianParams struct {
	Amplitude float64
	Center    [3]float64
	Sigma     [3]float64
	Baseline  float64 // phi baseline used in Overwrite/Blend mode
}

// Gaussian sets psi <- A * exp(-sum_axis (x_axis-c_axis)^2/(2 sigma_axis^2)),
// purely real. Sigma is clamped to >= 1e-9.
func Gaussian(f *igsoa.Field, p Placement, params GaussianParams) {
	g := f.Grid
	for i := range f.Nodes {
		x, y, z := g.Coords(i)
		coords := [3]float64{float64(x), float64(y), float64(z)}

		var exponent float64
		for axis := 0; axis < g.Dim; axis++ {
			sigma := params.Sigma[axis]
			if sigma < 1e-9 {
				sigma = 1e-9
			}
			d := coords[axis] - params.Center[axis]
			exponent += d * d / (2 * sigma * sigma)
		}
		newPsi := params.Amplitude * math.Exp(-exponent)

		node := &f.Nodes[i]
		oldRe := real(node.Psi)
		newRe := apply(p, oldRe, newPsi)
		node.Psi = complex(newRe, 0)

		switch p.Mode {
		case Overwrite:
			node.Phi = params.Baseline
		case Blend:
			node.Phi = apply(p, node.Phi, params.Baseline)
		case Add:
			// phi untouched.
		}
		node.RefreshDerived()
	}
}

// PlaneWaveParams parametrizes the plane-wave initializer.
type PlaneWaveParams struct {
	Amplitude float64
	K         [3]float64
	Phase0    float64
}

// PlaneWave sets psi <- A * exp(i*(k.x + phi0)).
func PlaneWave(f *igsoa.Field, p Placement, params PlaneWaveParams) {
	g := f.Grid
	for i := range f.Nodes {
		x, y, z := g.Coords(i)
		coords := [3]float64{float64(x), float64(y), float64(z)}
		var kx float64
		for axis := 0; axis < g.Dim; axis++ {
			kx += params.K[axis] * coords[axis]
		}
		newPsi := complex(params.Amplitude, 0) * cmplx.Exp(complex(0, kx+params.Phase0))

		node := &f.Nodes[i]
		node.Psi = complex(
			apply(p, real(node.Psi), real(newPsi)),
			apply(p, imag(node.Psi), imag(newPsi)),
		)
		node.RefreshDerived()
	}
}

// UniformParams parametrizes the uniform initializer.
type UniformParams struct {
	PsiRe, PsiIm, Phi float64
}

// Uniform sets every site to the same (psi_re, psi_im, phi).
func Uniform(f *igsoa.Field, p Placement, params UniformParams) {
	for i := range f.Nodes {
		node := &f.Nodes[i]
		node.Psi = complex(
			apply(p, real(node.Psi), params.PsiRe),
			apply(p, imag(node.Psi), params.PsiIm),
		)
		node.Phi = apply(p, node.Phi, params.Phi)
		node.RefreshDerived()
	}
}

// Random sets |psi| ~ Uniform[0, aMax], phase ~ Uniform[0, 2*pi), seeded
// from seed (0 requests system entropy).
func Random(f *igsoa.Field, p Placement, aMax float64, seed uint64) {
	var src rand.Source
	if seed == 0 {
		var s1, s2 uint64
		s1 = uint64(rand.Uint64())
		s2 = uint64(rand.Uint64())
		src = rand.NewPCG(s1, s2)
	} else {
		src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	r := rand.New(src)

	for i := range f.Nodes {
		mag := r.Float64() * aMax
		phase := r.Float64() * 2 * math.Pi
		newPsi := complex(mag*math.Cos(phase), mag*math.Sin(phase))

		node := &f.Nodes[i]
		node.Psi = complex(
			apply(p, real(node.Psi), real(newPsi)),
			apply(p, imag(node.Psi), imag(newPsi)),
		)
		node.RefreshDerived()
	}
}
