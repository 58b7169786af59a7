// Package igsoa implements the IGSOA field family: a complex amplitude Ψ
// non-locally coupled via an exponential kernel to a real causal field Φ.
// The per-step ordering, kernel, and gradient/driving/normalization
// treatment are identical across 1D/2D/3D; no dimension skips any of them.
package igsoa

import "math/cmplx"

// Node holds one lattice site's IGSOA state plus its cached derived
// quantities and per-node physical parameters. Parameters are stored
// per-node (to allow future heterogeneity) but are initialized uniformly
// from Config at construction.
type Node struct {
	Psi    complex128
	PsiDot complex128
	Phi    float64
	PhiDot float64

	F     float64 // |psi|^2
	GradF float64 // |grad F|
	Theta float64 // arg(psi)
	SDot  float64 // R_c * (phi - Re psi)^2

	RC    float64
	Kappa float64
	Gamma float64
}

// RefreshDerived recomputes F, Theta, and SDot from Psi/Phi/RC. GradF is
// computed separately by the Field since it needs neighboring F values.
func (n *Node) RefreshDerived() {
	n.F = cmplx.Abs(n.Psi) * cmplx.Abs(n.Psi)
	n.Theta = cmplx.Phase(n.Psi)
	diff := n.Phi - real(n.Psi)
	n.SDot = n.RC * diff * diff
}
