package initprofile

import "math"

// Zone describes one of the three spatial regions a ThreeZoneSource
// switches between, keyed by a half-open coordinate range along the
// lattice's primary axis.
type Zone struct {
	XLo, XHi float64
	Amplitude float64
}

// ThreeZoneParams parametrizes the SATP+Higgs three-zone source.
type ThreeZoneParams struct {
	Zones         [3]Zone
	Frequency     float64 // 0 means no oscillation (S is time-independent within the window)
	TStart, TEnd  float64
}

// threeZoneSource is a callable S(t, x, i): zone-specific amplitude times
// sin(2*pi*f*t) when a frequency is set, active only for t in
// [t_start, t_end]. It follows util/valgen.go's
// config-capturing-closure shape (MakeConstGen), exposed here as a small
// struct implementing satphiggs.Source instead of a bare func so it
// composes with the rest of the API without reflection.
type threeZoneSource struct {
	params ThreeZoneParams
}

// NewThreeZoneSource returns a callable implementing satphiggs.Source.
func NewThreeZoneSource(params ThreeZoneParams) *threeZoneSource {
	return &threeZoneSource{params: params}
}

// S evaluates the source at time t, lattice coordinates (x,y,z), and flat
// index i. Only x is used to select a zone.
func (s *threeZoneSource) S(t float64, x, y, z int, i int) float64 {
	if t < s.params.TStart || t > s.params.TEnd {
		return 0
	}

	var amp float64
	xf := float64(x)
	for _, zone := range s.params.Zones {
		if xf >= zone.XLo && xf < zone.XHi {
			amp = zone.Amplitude
			break
		}
	}
	if amp == 0 {
		return 0
	}

	if s.params.Frequency == 0 {
		return amp
	}
	return amp * math.Sin(2*math.Pi*s.params.Frequency*t)
}
