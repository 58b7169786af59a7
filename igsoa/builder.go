package igsoa

// ConfigBuilder assembles a Config through chainable WithXxx calls instead
// of a bare struct literal, mirroring config.DeviceBuilder's construction
// style. Every With method returns the receiver by value.
type ConfigBuilder struct {
	cfg Config
}

// NewConfigBuilder returns an empty builder. RC is left unset (RCSet is
// false) until WithRC is called, so Build's caller cannot mistake a
// zero-value Config for an explicit "R_c = 0".
func NewConfigBuilder() ConfigBuilder {
	return ConfigBuilder{}
}

// WithRC sets the causal radius explicitly, including 0 for zero coupling.
// The engine constructors reject a negative rc.
func (b ConfigBuilder) WithRC(rc float64) ConfigBuilder {
	b.cfg.RC = rc
	b.cfg.RCSet = true
	return b
}

// WithKappa sets the IGSOA coupling strength.
func (b ConfigBuilder) WithKappa(kappa float64) ConfigBuilder {
	b.cfg.Kappa = kappa
	return b
}

// WithGamma sets the damping coefficient.
func (b ConfigBuilder) WithGamma(gamma float64) ConfigBuilder {
	b.cfg.Gamma = gamma
	return b
}

// WithDT sets the step size.
func (b ConfigBuilder) WithDT(dt float64) ConfigBuilder {
	b.cfg.DT = dt
	return b
}

// WithHBar sets the reduced Planck constant used by Field.HBar. 0 leaves
// the default-to-1 behavior in place.
func (b ConfigBuilder) WithHBar(hbar float64) ConfigBuilder {
	b.cfg.HBar = hbar
	return b
}

// WithNormalizePsi enables per-step |psi| renormalization.
func (b ConfigBuilder) WithNormalizePsi(normalize bool) ConfigBuilder {
	b.cfg.NormalizePsi = normalize
	return b
}

// Build returns the assembled Config.
func (b ConfigBuilder) Build() Config {
	return b.cfg
}
