package effects

import "math"

// SVF is a topology-preserving-transform state-variable filter used in its
// lowpass form.
type SVF struct {
	ic1eq float64
	ic2eq float64
}

// Lowpass filters v0 with the given cutoff and resonance (0..1). Resonance is
// capped at 0.99 so the damping term never reaches zero.
func (f *SVF) Lowpass(v0, cutoffHz, resonance, sampleRate float64) float64 {
	g := math.Tan(math.Pi * cutoffHz / sampleRate)
	k := 2 - 2*math.Min(resonance, 0.99)
	v1 := (f.ic1eq + g*(v0-f.ic2eq)) / (1 + g*(g+k))
	v2 := f.ic2eq + g*v1
	f.ic1eq = 2*v1 - f.ic1eq
	f.ic2eq = 2*v2 - f.ic2eq
	return v2
}

func (f *SVF) Reset() {
	f.ic1eq = 0
	f.ic2eq = 0
}
