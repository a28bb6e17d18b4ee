package lfo

import "math"

// Shape selects the LFO waveform.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeTriangle
	ShapeSquare
)

const (
	MinRateHz = 0.05
	MaxRateHz = 40.0
)

// LFO is a per-voice low-frequency oscillator producing values in [-1, 1].
type LFO struct {
	rateHz     float64
	phase      float64 // [0, 1)
	sampleRate float64
}

func New(sampleRate float64) LFO {
	return LFO{rateHz: 1, sampleRate: sampleRate}
}

// SetRate sets the oscillation rate, clamped to [0.05, 40] Hz.
func (l *LFO) SetRate(rateHz float64) {
	l.rateHz = clamp(rateHz, MinRateHz, MaxRateHz)
}

func (l *LFO) Rate() float64 { return l.rateHz }

// Tick advances the phase by one sample and returns the waveform value at the
// new phase. Unknown shapes fall back to sine.
func (l *LFO) Tick(shape Shape) float64 {
	l.phase += l.rateHz / l.sampleRate
	l.phase -= math.Trunc(l.phase)
	switch shape {
	case ShapeTriangle:
		return 1 - math.Abs(l.phase*4-2)
	case ShapeSquare:
		if l.phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(l.phase * 2 * math.Pi)
	}
}

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
