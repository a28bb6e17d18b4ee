package effects

import "math"

const (
	tiltLowHz  = 200.0
	tiltHighHz = 2000.0
)

// TiltEQ boosts lows for positive tilt and highs for negative tilt using two
// one-pole lowpass states.
type TiltEQ struct {
	lowCoeff  float64
	highCoeff float64
	lowState  float64
	highState float64
}

func NewTiltEQ(sampleRate float64) TiltEQ {
	return TiltEQ{
		lowCoeff:  1 - math.Exp(-2*math.Pi*tiltLowHz/sampleRate),
		highCoeff: 1 - math.Exp(-2*math.Pi*tiltHighHz/sampleRate),
	}
}

// Process applies tilt in [-1, 1].
func (t *TiltEQ) Process(in, tilt float64) float64 {
	t.lowState += (in - t.lowState) * t.lowCoeff
	t.highState += (in - t.highState) * t.highCoeff
	high := in - t.highState
	return in + t.lowState*math.Max(tilt, 0)*0.5 + high*math.Max(-tilt, 0)*0.5
}

func (t *TiltEQ) Reset() {
	t.lowState = 0
	t.highState = 0
}
