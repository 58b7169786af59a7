package satphiggs

// ConfigBuilder assembles a Config through chainable WithXxx calls instead
// of a bare struct literal, mirroring config.DeviceBuilder's construction
// style. Every With method returns the receiver by value.
type ConfigBuilder struct {
	cfg Config
}

// NewConfigBuilder returns an empty builder.
func NewConfigBuilder() ConfigBuilder {
	return ConfigBuilder{}
}

// WithDx sets the lattice spacing.
func (b ConfigBuilder) WithDx(dx float64) ConfigBuilder {
	b.cfg.Dx = dx
	return b
}

// WithDT sets the step size.
func (b ConfigBuilder) WithDT(dt float64) ConfigBuilder {
	b.cfg.DT = dt
	return b
}

// WithC sets the wave speed used by the Laplacian terms and the CFL bound.
func (b ConfigBuilder) WithC(c float64) ConfigBuilder {
	b.cfg.C = c
	return b
}

// WithGammaPhi sets the phi damping coefficient.
func (b ConfigBuilder) WithGammaPhi(gamma float64) ConfigBuilder {
	b.cfg.GammaPhi = gamma
	return b
}

// WithGammaH sets the h damping coefficient.
func (b ConfigBuilder) WithGammaH(gamma float64) ConfigBuilder {
	b.cfg.GammaH = gamma
	return b
}

// WithLambda sets the phi-h coupling constant.
func (b ConfigBuilder) WithLambda(lambda float64) ConfigBuilder {
	b.cfg.Lambda = lambda
	return b
}

// WithMu2 sets the Higgs mass-squared term (negative in the
// symmetry-broken phase).
func (b ConfigBuilder) WithMu2(mu2 float64) ConfigBuilder {
	b.cfg.Mu2 = mu2
	return b
}

// WithLambdaH sets the Higgs self-coupling constant.
func (b ConfigBuilder) WithLambdaH(lambdaH float64) ConfigBuilder {
	b.cfg.LambdaH = lambdaH
	return b
}

// Build returns the assembled Config.
func (b ConfigBuilder) Build() Config {
	return b.cfg
}
